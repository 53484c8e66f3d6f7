package common

import "strconv"

// Equipment metadata carries per-device extras that have no dedicated
// config field (SNMP version, ONU type, CLI pacing). Keys are checked in
// order so callers can offer fallback spellings - first match wins.

// MetadataString retrieves a string value from metadata.
// Returns the value and true if found, empty string and false otherwise.
func MetadataString(metadata map[string]string, keys ...string) (string, bool) {
	if metadata == nil {
		return "", false
	}
	for _, key := range keys {
		if value, ok := metadata[key]; ok {
			return value, true
		}
	}
	return "", false
}

// MetadataInt retrieves an integer value from metadata.
// Returns the value and true if found, 0 and false otherwise.
func MetadataInt(metadata map[string]string, keys ...string) (int, bool) {
	if metadata == nil {
		return 0, false
	}
	for _, key := range keys {
		if valueStr, ok := metadata[key]; ok {
			if value, err := strconv.Atoi(valueStr); err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

// MetadataStringDefault retrieves a string from metadata, or returns defaultValue.
func MetadataStringDefault(metadata map[string]string, defaultValue string, keys ...string) string {
	if value, ok := MetadataString(metadata, keys...); ok {
		return value
	}
	return defaultValue
}

// MetadataIntDefault retrieves an integer from metadata, or returns defaultValue.
func MetadataIntDefault(metadata map[string]string, defaultValue int, keys ...string) int {
	if value, ok := MetadataInt(metadata, keys...); ok {
		return value
	}
	return defaultValue
}

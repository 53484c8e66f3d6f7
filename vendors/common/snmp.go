package common

import (
	"fmt"
	"strings"
)

// SNMPInvalidValue is the magic value both supported vendors return when
// an ONU is offline or a reading is unavailable.
const SNMPInvalidValue int64 = 2147483647

// LookupOID finds an OID in SNMP results, tolerating the leading-dot
// mismatch: gosnmp keys results as ".1.3.6.1..." while OID constants are
// usually written without the dot.
func LookupOID(results map[string]interface{}, oid string) (interface{}, bool) {
	if results == nil {
		return nil, false
	}

	if !strings.HasPrefix(oid, ".") {
		if val, ok := results["."+oid]; ok {
			return val, true
		}
	}

	if val, ok := results[oid]; ok {
		return val, true
	}

	if stripped := strings.TrimPrefix(oid, "."); stripped != oid {
		if val, ok := results[stripped]; ok {
			return val, true
		}
	}

	return nil, false
}

// ToFloat64 extracts a float64 from the numeric types gosnmp may return.
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// ToInt64 extracts an int64 from the numeric types gosnmp may return.
func ToInt64(value interface{}) (int64, bool) {
	f, ok := ToFloat64(value)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// LookupInt64 finds an OID in SNMP results and coerces it to int64.
func LookupInt64(results map[string]interface{}, oid string) (int64, bool) {
	v, ok := LookupOID(results, oid)
	if !ok {
		return 0, false
	}
	return ToInt64(v)
}

// ToString extracts the text of a string or octet-string value.
func ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// IsValidReading reports whether a numeric reading is usable: not zero
// and not the vendor invalid marker.
func IsValidReading(value int64) bool {
	return value != SNMPInvalidValue && value != 0
}

// IsPrintableASCII reports whether every byte is printable 7-bit ASCII.
func IsPrintableASCII(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

// NormalizeValue renders an SNMP value for storage or display. SNMP has
// no native notion of "this octet string is text", so octet strings that
// decode as printable ASCII are surfaced as text and everything else as
// an uppercase hex byte string. Numerics format with %v.
func NormalizeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		if IsPrintableASCII([]byte(v)) {
			return strings.TrimSpace(v)
		}
		return fmt.Sprintf("%X", []byte(v))
	case []byte:
		if IsPrintableASCII(v) {
			return strings.TrimSpace(string(v))
		}
		return fmt.Sprintf("%X", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package common

import (
	"fmt"
	"regexp"
	"strings"
)

// ansiRegex matches ANSI escape sequences (colors, cursor movement, etc.)
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape codes from a string.
// Useful for parsing CLI output that may contain terminal formatting.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// cliArgRegex is the safe character class for values interpolated into
// CLI command strings: alphanumerics plus / _ . - only.
var cliArgRegex = regexp.MustCompile(`^[A-Za-z0-9/_.\-]+$`)

// ValidCLIArgument reports whether value is safe to interpolate into a
// command line. The command catalogs rely on callers having run this
// check; they do not re-validate.
func ValidCLIArgument(value string) bool {
	return cliArgRegex.MatchString(value)
}

// ValidatePortName rejects physical port names containing anything
// outside the safe character class, including control characters and
// shell metacharacters.
func ValidatePortName(name string) error {
	if name == "" {
		return fmt.Errorf("port name is empty")
	}
	if !ValidCLIArgument(name) {
		return fmt.Errorf("port name %q contains characters outside [A-Za-z0-9/_.-]", name)
	}
	return nil
}

// unsafeRunRegex matches runs of characters outside the safe class.
var unsafeRunRegex = regexp.MustCompile(`[^A-Za-z0-9/_.\-]+`)

// SanitizeDescription reduces a free-text label to the safe character
// class, replacing runs of anything else with a single underscore.
func SanitizeDescription(desc string) string {
	desc = StripANSI(desc)
	desc = unsafeRunRegex.ReplaceAllString(desc, "_")
	return strings.Trim(desc, "_")
}

package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Control characters except tab, newline and carriage return
var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// ValidateRange checks that min <= value <= max
func ValidateRange(value, min, max decimal.Decimal) error {
	if value.LessThan(min) || value.GreaterThan(max) {
		return fmt.Errorf("must be between %s and %s, got %s", min, max, value)
	}
	return nil
}

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// SanitizeFilename reduces an uploaded filename to its base name.
// Returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	name = SanitizeString(strings.ReplaceAll(name, "\\", "/"))
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

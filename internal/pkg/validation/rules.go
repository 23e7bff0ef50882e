package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// Email validation pattern
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`

	// Sri Lankan NIC: old format (9 digits + V/X) or new format (12 digits)
	NICPattern = `^(\d{9}[VvXx]|\d{12})$`

	// Mobile number: optional leading +, 9 to 15 digits
	MobilePattern = `^\+?\d{9,15}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email  *regexp.Regexp
	NIC    *regexp.Regexp
	Mobile *regexp.Regexp
}{
	Email:  regexp.MustCompile(EmailPattern),
	NIC:    regexp.MustCompile(NICPattern),
	Mobile: regexp.MustCompile(MobilePattern),
}

// IsValidEmail reports whether the value looks like an email address.
func IsValidEmail(value string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(value)))
}

// IsValidNIC reports whether the value is a valid NIC number.
func IsValidNIC(value string) bool {
	return CompiledPatterns.NIC.MatchString(strings.TrimSpace(value))
}

// IsValidMobile reports whether the value is a plausible mobile number.
func IsValidMobile(value string) bool {
	return CompiledPatterns.Mobile.MatchString(strings.TrimSpace(value))
}

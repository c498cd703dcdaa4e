// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/healo/piiguard/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// phoneCharsRegex allows digits, an optional leading plus, spaces, dots, dashes and parentheses
	phoneCharsRegex = regexp.MustCompile(`^\+?[0-9 .\-()]+$`)
)

const (
	phoneMinDigits = 7
	phoneMaxDigits = 15
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// Phone validates a loosely formatted international phone number holding 7 to 15 digits.
var Phone = validation.NewStringRuleWithError(
	func(s string) bool {
		if !phoneCharsRegex.MatchString(s) {
			return false
		}
		digits := 0
		for _, r := range s {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		return digits >= phoneMinDigits && digits <= phoneMaxDigits
	},
	validation.NewError("validation_phone_format", "must be a valid phone number"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoControlChars rejects control characters other than newlines and tabs.
var NoControlChars = validation.NewStringRuleWithError(
	func(s string) bool {
		for _, r := range s {
			if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_control_chars", "must not contain control characters"),
)

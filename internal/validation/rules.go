// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/trustguard/internal/errors"
)

var (
	// emailRegex is a basic email validation pattern
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// israeliPhoneRegex accepts local mobile/landline formats and the +972 prefix
	israeliPhoneRegex = regexp.MustCompile(`^(?:\+972[-\s]?|0)(?:[23489]|5\d)[-\s]?\d{3}[-\s]?\d{4}$`)

	// alphanumericRegex allows letters and digits only
	alphanumericRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength validates password meets minimum security requirements
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// Validate checks if the password meets the configured requirements
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			"password must be at least "+strconv.Itoa(p.MinLength)+" characters",
		)
	}

	if p.RequireUpper && !hasUpperCase(s) {
		return validation.NewError(
			"validation_password_uppercase",
			"password must contain at least one uppercase letter",
		)
	}

	if p.RequireLower && !hasLowerCase(s) {
		return validation.NewError(
			"validation_password_lowercase",
			"password must contain at least one lowercase letter",
		)
	}

	if p.RequireNumber && !hasNumber(s) {
		return validation.NewError("validation_password_number", "password must contain at least one number")
	}

	if p.RequireSpecial && !hasSpecialChar(s) {
		return validation.NewError(
			"validation_password_special",
			"password must contain at least one special character",
		)
	}

	return nil
}

// hasUpperCase checks if string contains uppercase letters
func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// hasLowerCase checks if string contains lowercase letters
func hasLowerCase(s string) bool {
	for _, r := range s {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// hasNumber checks if string contains numbers
func hasNumber(s string) bool {
	for _, r := range s {
		if unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// hasSpecialChar checks if string contains special characters
func hasSpecialChar(s string) bool {
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return true
		}
	}
	return false
}

// ValidIsraeliID reports whether the value is a valid Israeli ID number.
// The ID must be exactly nine digits and satisfy the Luhn-style checksum:
// each digit is weighted 1 or 2 alternately from the left, weighted values
// above nine have nine subtracted, and the total must be divisible by ten.
func ValidIsraeliID(id string) bool {
	if len(id) != 9 {
		return false
	}

	sum := 0
	for i, r := range id {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		weighted := digit * (i%2 + 1)
		if weighted > 9 {
			weighted -= 9
		}
		sum += weighted
	}

	return sum%10 == 0
}

// IsraeliID validates the Israeli ID number checksum.
var IsraeliID = validation.NewStringRuleWithError(
	ValidIsraeliID,
	validation.NewError("validation_israeli_id", "must be a valid Israeli ID number"),
)

// IsraeliPhone validates Israeli phone number formats (mobile, landline, +972).
var IsraeliPhone = validation.NewStringRuleWithError(
	func(s string) bool {
		return israeliPhoneRegex.MatchString(s)
	},
	validation.NewError("validation_israeli_phone", "must be a valid Israeli phone number"),
)

// Email validates email format using regex
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// UUID validates canonical UUID strings.
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// URL validates absolute http or https URLs.
var URL = validation.NewStringRuleWithError(
	func(s string) bool {
		parsed, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
	},
	validation.NewError("validation_url", "must be a valid http or https URL"),
)

// Alphanumeric validates that a string contains letters and digits only.
var Alphanumeric = validation.NewStringRuleWithError(
	func(s string) bool {
		return alphanumericRegex.MatchString(s)
	},
	validation.NewError("validation_alphanumeric", "must contain only letters and digits"),
)

// Base64 validates standard base64-encoded data.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be valid base64-encoded data"),
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

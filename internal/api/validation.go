package api

import (
	"unicode"

	"github.com/go-playground/validator/v10"
)

// minPasswordLength is the floor for registration passwords. bcrypt caps
// input at 72 bytes, enforced by the max tag alongside this rule.
const minPasswordLength = 8

// newValidator builds a validator with the custom taskpassword rule
// registered. Handlers share one instance; validator.Validate is safe for
// concurrent use.
func newValidator() *validator.Validate {
	v := validator.New()
	// RegisterValidation only fails for an empty tag name.
	_ = v.RegisterValidation("taskpassword", validatePasswordComplexity)
	return v
}

// validatePasswordComplexity requires at least 8 characters covering upper
// case, lower case, a digit and a special character.
func validatePasswordComplexity(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < minPasswordLength || len(password) > 72 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

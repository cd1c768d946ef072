package auth

import (
	"fmt"
	"unicode"

	"sayit/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AdminPassword struct {
	Password string `validate:"required,min=12,max=72"`
}

// ValidateAdminPassword enforces the rules applied before an admin password is hashed.
func ValidateAdminPassword(password string) error {
	if err := validate.Struct(AdminPassword{Password: password}); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidPassword, err)
	}
	if !isPasswordComplex(password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}

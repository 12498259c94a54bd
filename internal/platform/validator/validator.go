// Package validator wraps go-playground/validator with the rules the
// application registers on top of the built-in tags.
package validator

import (
	"bookshelf/internal/platform/crypto"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the password_strength rule registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return crypto.ValidatePasswordStrength(fl.Field().String()) == nil
	})
	return &Validator{v: v}
}

// Struct validates s against its validate tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single value against tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

package coachdto

import validator "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct tags on any DTO. Payloads crossing the sync
// boundary are checked once here and trusted downstream.
func Validate(v any) error {
	return validate.Struct(v)
}

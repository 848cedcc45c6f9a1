package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Title.required":  "title is required",
	"Title.max":       "title cannot exceed 100 characters",
	"Description.max": "description cannot exceed 500 characters",
	"Email.required":  "email is required",
	"Email.email":     "email is not valid",
	"Secret.required": "password is required",
	"Secret.min":      "password must be at least 6 characters",
}

// validateStruct runs the struct's validate tags and converts the first
// failure into a ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return &ValidationError{Message: msg}
	}
	return validationErrorf("%s is not valid", strings.ToLower(fe.Field()))
}

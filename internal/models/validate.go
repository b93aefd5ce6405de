package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of v. Failures satisfy errors.NotValid and
// name every offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Trace(err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.WithType(errors.New(strings.Join(msgs, "; ")), errors.NotValid)
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be an email address"
	case "oneof":
		return field + " must be one of " + fe.Param()
	case "url":
		return field + " must be a URL"
	case "min":
		return field + " must have at least " + fe.Param() + " characters"
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	}
	return field + " failed " + fe.Tag()
}

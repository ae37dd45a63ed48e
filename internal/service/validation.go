package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(field.Name)
		}
		return name
	})
	return v
}

// validateStruct runs struct tags and converts the first failure into a
// *ValidationError.
func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return invalid(field, "%s is required", field)
	case "email":
		return invalid(field, "must be a valid email address")
	case "min":
		if fe.Kind() == reflect.String {
			return invalid(field, "must be at least %s characters", fe.Param())
		}
		return invalid(field, "must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return invalid(field, "must be at most %s characters", fe.Param())
		}
		return invalid(field, "must be at most %s", fe.Param())
	case "hexcolor":
		return invalid(field, "must be a hex color")
	default:
		return invalid(field, "failed %s validation", fe.Tag())
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

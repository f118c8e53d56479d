package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON name so messages match the request body.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = field + " is required"
		case "email":
			errs[field] = field + " must be a valid email address"
		case "min":
			if e.Kind() == reflect.String {
				errs[field] = field + " must be at least " + e.Param() + " characters"
			} else {
				errs[field] = field + " must be at least " + e.Param()
			}
		case "max":
			errs[field] = field + " must be at most " + e.Param() + " characters"
		case "oneof":
			errs[field] = field + " must be one of: " + e.Param()
		default:
			errs[field] = field + " is invalid"
		}
	}

	return errs
}

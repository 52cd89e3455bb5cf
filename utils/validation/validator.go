package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance. Field names in errors are
// taken from the json tag so they match the request body.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateStruct validates a struct using struct tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// Check validates s and returns the failures keyed by field, or nil when s
// is valid
func (v *Validator) Check(s interface{}) map[string]string {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	errs := FormatValidationErrors(err)
	if len(errs) == 0 {
		errs = map[string]string{"body": err.Error()}
	}
	return errs
}

// FormatValidationErrors converts validation errors to a user-friendly format
func FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errs
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errs[field] = "Invalid email format"
		case "url":
			errs[field] = "Invalid URL"
		case "min":
			errs[field] = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			errs[field] = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("%s must be greater than %s", field, e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
		case "lte":
			errs[field] = fmt.Sprintf("%s must be less than or equal to %s", field, e.Param())
		case "oneof":
			errs[field] = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param(), " ", ", "))
		default:
			errs[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return errs
}

// SanitizeString removes potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}

package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo's Validator
// interface so every bound request struct is checked at the boundary.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &RequestValidator{validate: v}
}

func (r *RequestValidator) Validate(i interface{}) error {
	return r.validate.Struct(i)
}

// FieldErrors flattens a validation error into a field → messages map
// matching the response envelope's errors shape. Returns nil when err
// is not a validation error.
func FieldErrors(err error) map[string][]string {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return nil
	}

	out := make(map[string][]string, len(verr))
	for _, fe := range verr {
		field := strings.ToLower(fe.Field())
		out[field] = append(out[field], message(field, fe))
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("the %s field is required", field)
	case "email":
		return fmt.Sprintf("the %s field must be a valid email address", field)
	case "min":
		return fmt.Sprintf("the %s field must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("the %s field must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("the %s field must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("the %s field is invalid", field)
	}
}

// Package validation evaluates the `validate` struct tags of request types
// and renders failures as client-facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// Normalizer is implemented by requests that trim or default their fields
// before validation.
type Normalizer interface {
	Normalize()
}

// Struct normalizes v when it implements Normalizer, then validates it.
func Struct(v any) error {
	if n, ok := v.(Normalizer); ok {
		n.Normalize()
	}
	return validate.Struct(v)
}

// IsSlug reports whether s is a URL-safe slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Details renders a validation error as a single comma separated message.
// Non-validation errors (malformed JSON) are returned as their message.
func Details(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return strings.Join(msgs, ", ")
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "slug":
		return fmt.Sprintf("%s must contain only lowercase letters, digits and dashes", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Package validator wraps go-playground/validator with JSON field names and
// a flat error shape for API responses.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates request DTOs by their struct tags.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator that reports fields by their json (or form) name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	return &Validator{v: v}
}

func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// RegisterValidation installs a custom tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// Fields flattens validation errors into field -> failed tag. It returns nil
// for any other error.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		out[fe.Field()] = tag
	}
	return out
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

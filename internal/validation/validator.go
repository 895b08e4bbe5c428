// Package validation provides entity and request validation on top of the
// validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "":
			return fld.Name
		case "-":
			return ""
		}
		return name
	})

	// A whitespace-only string is as absent as an empty one.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}

	return &Validator{v: v}
}

// Validate validates a struct and returns a validation error whose details
// map each failing JSON field to its messages.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := make(domainerrors.FieldErrors, len(validationErrs))
	for _, e := range validationErrs {
		fields.Add(e.Field(), friendlyMessage(e))
	}

	return domainerrors.ValidationWithDetails("validation failed", fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "can't be blank"
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", e.Param())
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", e.Param())
	case "len":
		return fmt.Sprintf("is the wrong length (should be %s characters)", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "oneof":
		return "is not included in the list"
	default:
		return "is invalid"
	}
}

package finance

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Veraticus/finanzas/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator returns a validator that reports fields by their JSON names
// and knows the custom tags used by the payload and wire types.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// notblank rejects strings made only of whitespace.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// positive accepts a decimal string strictly greater than zero.
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})

	return v
}

// checkInput runs pre-flight validation on an outgoing payload.
func checkInput(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	out := &common.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

// checkResponse validates a decoded wire value. Anything the backend sends
// that does not fit the expected shape is a server error.
func checkResponse(v *validator.Validate, wire any) error {
	if err := v.Struct(wire); err != nil {
		return &common.APIError{
			Kind:    common.ErrServer,
			Message: "unexpected response shape",
			Err:     err,
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "positive":
		return "must be greater than zero"
	case "gt":
		return "must be set"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date like " + fe.Param()
	default:
		return "is invalid"
	}
}

package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidationFailed is wrapped by every error Validate returns.
var ErrValidationFailed = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names, e.g. descricao.valor
	vld.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := vld.RegisterValidation("nonnegative_amount", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(Amount)
		if !ok {
			return false
		}
		return !value.IsNegative()
	}); err != nil {
		return nil, fmt.Errorf("register 'nonnegative_amount': %w", err)
	}

	return vld, nil
}

// Validate checks the structural rules declared on the DTO tags and reports the first
// violation.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errValidate)
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			return formatFieldError(validationErrors[0])
		}
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return nil
}

func formatFieldError(fe validator.FieldError) error {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:] // drop the root type name
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: '%s' is required", ErrValidationFailed, field)
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s characters", ErrValidationFailed, field, fe.Param())
	case "gte":
		return fmt.Errorf("%w: '%s' must be at least %s", ErrValidationFailed, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: '%s' must be one of [%s]", ErrValidationFailed, field, fe.Param())
	case "nonnegative_amount":
		return fmt.Errorf("%w: '%s' must not be negative", ErrValidationFailed, field)
	default:
		return fmt.Errorf("%w: '%s' failed on '%s'", ErrValidationFailed, field, fe.Tag())
	}
}

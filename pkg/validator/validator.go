package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var global *validator.Validate

const (
	ErrFieldRequired      = "Field is required"
	ErrInvalidEmail       = "Invalid email"
	ErrInvalidOption      = "Value is not one of the allowed options"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

// New returns a validator that reports fields by their JSON names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validateNotBlank)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Error describes the first failed rule of a payload.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message + ": " + e.Field
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return err
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required", "notblank":
		msg = ErrFieldRequired
	case "email":
		msg = ErrInvalidEmail
	case "oneof":
		msg = ErrInvalidOption
	case "max":
		msg = ErrFieldExceedsMaxLen
	default:
		msg = ErrUnknownValidation
	}
	return &Error{Field: fieldPath(ve.Namespace()), Message: msg}
}

// fieldPath drops the root struct name: "EventRequest.tickets[0].tipo"
// becomes "tickets[0].tipo".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// EchoValidator plugs the package validator into echo.Echo.Validator.
type EchoValidator struct{}

func (EchoValidator) Validate(i any) error {
	return Validate(context.Background(), i)
}

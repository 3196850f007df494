package dto

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pashto-learning-app/backend/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so meta.field matches the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt only reads the first 72 bytes, and Pashto letters take two each
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return v
}

// validateStruct maps the first failing field to a domain validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInvalidField("body", "invalid request")
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField(field)
	case "min":
		if field == "password" {
			return domain.ErrWeakPassword("min length " + fe.Param())
		}
		return domain.ErrInvalidField(field, "too short")
	case "max":
		return domain.ErrInvalidField(field, "max length "+fe.Param())
	case "maxbytes":
		if field == "password" {
			return domain.ErrWeakPassword("max " + fe.Param() + " bytes")
		}
		return domain.ErrInvalidField(field, "max "+fe.Param()+" bytes")
	case "email":
		return domain.ErrInvalidField(field, "invalid format")
	default:
		return domain.ErrInvalidField(field, fe.Tag())
	}
}

package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the validate tags of v and returns httpx.FieldErrors
// keyed by JSON field name.
func ValidateStruct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := httpx.FieldErrors{}
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "email":
		return name + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "alphanumunicode", "alphanum":
		return name + " may only contain letters and digits"
	}
	return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
}

// Merge folds extra field errors into err. It returns nil when both are empty.
func Merge(err error, extra httpx.FieldErrors) error {
	var fields httpx.FieldErrors
	if err != nil && !errors.As(err, &fields) {
		return err
	}
	if len(extra) == 0 {
		return err
	}
	if fields == nil {
		fields = httpx.FieldErrors{}
	}
	for k, v := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return fields
}

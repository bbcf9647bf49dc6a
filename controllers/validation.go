package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vnkhanh/educenter-backend/services"
)

var (
	centerPhone = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	branchPhone = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	uzPhone     = regexp.MustCompile(`^\+998\d{9}$`)
)

// RegisterValidators installs the custom binding tags and reports fields by
// their JSON names. It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	for tag, re := range map[string]*regexp.Regexp{
		"center_phone": centerPhone,
		"branch_phone": branchPhone,
		"uz_phone":     uzPhone,
	} {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// bindingError converts a binding failure into a ValidationError with one
// readable message per field.
func bindingError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, fieldMessage(fe))
		}
		return services.NewValidationError(messages...)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return services.NewValidationError(fmt.Sprintf("%s has an invalid type", typeErr.Field))
	}
	return services.NewValidationError("Invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s cannot be longer than %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, fe.Param())
	case "numeric":
		return field + " must contain only digits"
	case "email":
		return "Invalid email format"
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "center_phone", "branch_phone":
		return "Phone must be a valid phone number (e.g., +1234567890)"
	case "uz_phone":
		return "Phone number must be in the format +998XXXXXXXXX"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

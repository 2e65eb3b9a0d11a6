package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SanitizeValidationError takes a binding/validation error and returns a
// user-friendly message without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a field-level validation error; most likely a JSON decode
		// failure from gin's binder.
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	return strings.Join(messages, "; ")
}

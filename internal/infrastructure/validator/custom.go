package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validateModelID rejects blank model names.
func validateModelID(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Gateway payment identifiers look like "pay_" followed by an opaque token.
var paymentIdRgx = regexp.MustCompile(`^pay_[A-Za-z0-9]+$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("payment_id", validatePaymentId)

	return validator
}

func validatePaymentId(fl validator.FieldLevel) bool {
	return paymentIdRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "payment_id":
		return "must be a valid gateway payment identifier"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	default:
		return "is invalid"
	}
}

package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired          = "is required"
	ErrInvalidEmail      = "must be a valid email address"
	ErrMinLength         = "must be at least %s characters long"
	ErrMaxLength         = "must be at most %s characters long"
	ErrOneOf             = "must be one of: %s"
	ErrInvalidPhone      = "must be a 10 digit phone number"
	ErrInvalidPayment    = "must be one of: card, upi, wallet"
	ErrDefaultInvalid    = "is invalid"
	ErrMinValue          = "must be greater than or equal to %s"
	ErrMaxValue          = "must be less than or equal to %s"
	phoneDigits          = 10
	paymentMethodsString = "card upi wallet"
)

var (
	phoneRgx       = regexp.MustCompile(`^[0-9]+$`)
	paymentMethods = strings.Fields(paymentMethodsString)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("phone", validatePhone)
	validator.RegisterValidation("payment_method", validatePaymentMethod)

	return validator
}

// validatePhone accepts exactly ten digits once spaces and dashes are removed.
func validatePhone(fl validator.FieldLevel) bool {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(fl.Field().String())

	return len(phone) == phoneDigits && phoneRgx.MatchString(phone)
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	method := fl.Field().String()

	for _, m := range paymentMethods {
		if method == m {
			return true
		}
	}

	return false
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrInvalidEmail
	case "min":
		if err.Kind().String() == "string" {
			return fmt.Sprintf(ErrMinLength, err.Param())
		}
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		if err.Kind().String() == "string" {
			return fmt.Sprintf(ErrMaxLength, err.Param())
		}
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	case "phone":
		return ErrInvalidPhone
	case "payment_method":
		return ErrInvalidPayment
	default:
		return ErrDefaultInvalid
	}
}

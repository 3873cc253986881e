package validator

import (
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	minPasswordLength = 10
	maxPasswordLength = 72
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("password", validatePassword)
	validator.RegisterValidation("rate", validateRate)
	validator.RegisterValidation("future", validateFuture)

	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	return validator
}

// decimalValue lets numeric tags such as gte apply to decimal amounts.
func decimalValue(field reflect.Value) any {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}

	return d.InexactFloat64()
}

// bcrypt ignores bytes past 72.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	return utf8.RuneCountInString(password) >= minPasswordLength && len(password) <= maxPasswordLength
}

func validateRate(fl validator.FieldLevel) bool {
	return domain.Rate(fl.Field().String()).Valid()
}

func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}

	return t.After(time.Now())
}

const (
	ErrRequired        = "is required"
	ErrInvalidEmail    = "must be a valid email address"
	ErrInvalidPassword = "must be between 10 and 72 characters long"
	ErrInvalidRate     = "must be one of Normal, Étudiant, Réduit"
	ErrNotInFuture     = "must be in the future"
	ErrDuplicates      = "must not contain duplicates"
	ErrInvalidURL      = "must be a valid URL"
	ErrDefaultInvalid  = "is invalid"
)

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrInvalidEmail
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "eqfield":
		return fmt.Sprintf("must have as many items as %s", err.Param())
	case "unique":
		return ErrDuplicates
	case "url":
		return ErrInvalidURL
	case "password":
		return ErrInvalidPassword
	case "rate":
		return ErrInvalidRate
	case "future":
		return ErrNotInFuture
	default:
		return ErrDefaultInvalid
	}
}

package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sdarshil6/url-shortener/pkg/response"
)

const passwordSpecials = "!@#$%^&*"

var (
	validate *validator.Validate
	aliasRe  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// reservedKeywords are route segments a custom key may not shadow.
var reservedKeywords = map[string]bool{
	"admin":   true,
	"api":     true,
	"healthz": true,
	"me":      true,
	"readyz":  true,
	"token":   true,
	"url":     true,
	"users":   true,
}

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("alias", validateAlias)
	_ = validate.RegisterValidation("password", validatePassword)
}

func Validate(data interface{}) []response.ValidationError {
	var validationErrors []response.ValidationError

	err := validate.Struct(data)
	if err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []response.ValidationError{{Field: "", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationErrors = append(validationErrors, response.ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func validateAlias(fl validator.FieldLevel) bool {
	alias := fl.Field().String()
	return aliasRe.MatchString(alias) && !IsReservedKeyword(alias)
}

// validatePassword requires at least 8 characters with a digit, an upper
// and a lower case letter and one of !@#$%^&*.
func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var digit, upper, lower, special bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	return digit && upper && lower && special
}

func IsReservedKeyword(alias string) bool {
	return reservedKeywords[strings.ToLower(alias)]
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "alias":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_' and must not be a reserved word", field)
	case "password":
		return fmt.Sprintf("%s must be at least 8 characters and include a digit, an uppercase letter, a lowercase letter and one of %s", field, passwordSpecials)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email address is malformed
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrPasswordTooShort indicates the password is below the minimum length
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Validator wraps go-playground/validator and adds account field checks
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that reports fields by their json names
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates `validate` tags on s. It returns nil when s is valid,
// otherwise a field -> failed tag map.
func (v *Validator) Struct(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// NormalizeEmail trims and lower-cases an email address
func (v *Validator) NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email normalizes and validates an email address
func (v *Validator) Email(email string) (string, error) {
	normalized := v.NormalizeEmail(email)
	if normalized == "" {
		return "", ErrEmptyEmail
	}
	if err := v.validate.Var(normalized, "email"); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// Password checks the minimum password length
func (v *Validator) Password(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// OrganizationFromEmail derives an organization name from the email domain,
// e.g. "jane@stanford.edu" -> "Stanford". Returns "" when there is no domain.
func (v *Validator) OrganizationFromEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	label := strings.SplitN(email[at+1:], ".", 2)[0]
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials is the login input.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Registration is the new-account input.
type Registration struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Profile is the profile-update input.
type Profile struct {
	Name  string `validate:"required,min=2,max=100"`
	Email string `validate:"required,email"`
}

// PostInput is the create/update post input.
type PostInput struct {
	Title string `validate:"required,max=200"`
	Body  string `validate:"required"`
}

// CommentInput is the create/edit comment input.
type CommentInput struct {
	Text string `validate:"required"`
}

// EmailInput is a bare email address, used by the reset flow.
type EmailInput struct {
	Email string `validate:"required,email"`
}

// OTPCode is the 6-digit verification code.
type OTPCode struct {
	Code string `validate:"required,len=6,numeric"`
}

// Struct validates a struct based on its validation tags
func Struct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// PasswordReport holds the live evaluation of a candidate password
// against the acceptance rules, one flag per rule so a caller can show
// the checklist as the user types.
type PasswordReport struct {
	MinLength bool
	Uppercase bool
	Digit     bool
}

// OK reports whether every rule passed.
func (r PasswordReport) OK() bool {
	return r.MinLength && r.Uppercase && r.Digit
}

// CheckPassword evaluates the new-password acceptance rules.
func CheckPassword(password string) PasswordReport {
	r := PasswordReport{MinLength: len(password) >= 6}
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			r.Uppercase = true
		case unicode.IsDigit(c):
			r.Digit = true
		}
	}
	return r
}

// NewPassword validates a new password and its confirmation. Each
// failed rule yields its own message; a generic error is never
// returned.
func NewPassword(password, confirm string) error {
	report := CheckPassword(password)
	if !report.MinLength {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if !report.Uppercase {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !report.Digit {
		return fmt.Errorf("password must contain at least one number")
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, e.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

package form

import (
	"errors"
	"fmt"
)

type FieldName string

const (
	NameField            FieldName = "name"
	EmailField           FieldName = "email"
	PasswordField        FieldName = "password"
	ConfirmPasswordField FieldName = "confirmPassword"
)

// Fields lists every form field in display order.
var Fields = []FieldName{NameField, EmailField, PasswordField, ConfirmPasswordField}

var ErrInvalidFieldName = errors.New("invalid field name")

func (f FieldName) Valid() bool {
	switch f {
	case NameField, EmailField, PasswordField, ConfirmPasswordField:
		return true
	}
	return false
}

// ParseFieldName converts an external field name into a FieldName.
func ParseFieldName(s string) (FieldName, error) {
	f := FieldName(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFieldName, s)
	}
	return f, nil
}

// FormState holds the current value of every field.
type FormState struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Get returns the value stored under f. Unknown names yield "".
func (s FormState) Get(f FieldName) string {
	switch f {
	case NameField:
		return s.Name
	case EmailField:
		return s.Email
	case PasswordField:
		return s.Password
	case ConfirmPasswordField:
		return s.ConfirmPassword
	}
	return ""
}

func (s FormState) with(f FieldName, value string) FormState {
	switch f {
	case NameField:
		s.Name = value
	case EmailField:
		s.Email = value
	case PasswordField:
		s.Password = value
	case ConfirmPasswordField:
		s.ConfirmPassword = value
	}
	return s
}

package form

import "github.com/thisisjab/signup-go/internal/validator"

const (
	MsgNameTooShort      = "Name must be at least 3 characters"
	MsgEmailInvalid      = "Email is not valid"
	MsgPasswordWeak      = "Password must be at least 8 characters and contain a number"
	MsgPasswordsMismatch = "Passwords do not match"
)

const (
	minNameChars     = 3
	minPasswordChars = 8
)

// Validate returns the error message for the field name given the current
// values, or "" when the value passes. Only confirmPassword looks at another
// field.
func Validate(name FieldName, values FormState) string {
	v := validator.New()
	key := string(name)
	value := values.Get(name)

	switch name {
	case NameField:
		v.Check(validator.MinChars(value, minNameChars), key, MsgNameTooShort)
	case EmailField:
		v.Check(validator.Matches(value, validator.EmailRX), key, MsgEmailInvalid)
	case PasswordField:
		v.Check(validator.SingleLine(value) &&
			validator.MinChars(value, minPasswordChars) &&
			validator.ContainsDigit(value), key, MsgPasswordWeak)
	case ConfirmPasswordField:
		v.Check(value == values.Password, key, MsgPasswordsMismatch)
	}

	return v.Error(key)
}

// dependents lists the fields whose rules read the given field.
func dependents(name FieldName) []FieldName {
	if name == PasswordField {
		return []FieldName{ConfirmPasswordField}
	}
	return nil
}

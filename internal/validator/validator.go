package validator

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// EmailRX is a loose sanity check for email addresses: something, an @,
// something, a dot, something. None of the parts may contain whitespace or
// another @. The whitespace class mirrors what browsers treat as \s.
var EmailRX = regexp.MustCompile(`^[^@\s\x{0B}\p{Z}\x{FEFF}]+@[^@\s\x{0B}\p{Z}\x{FEFF}]+\.[^@\s\x{0B}\p{Z}\x{FEFF}]+$`)

type Validator struct {
	errors map[string]string
}

func New() *Validator {
	return &Validator{
		errors: make(map[string]string),
	}
}

func (v *Validator) Valid() bool {
	return len(v.errors) == 0
}

func (v *Validator) AddError(key, message string) {
	if _, exists := v.errors[key]; !exists {
		v.errors[key] = message
	}
}

// Error returns the first message recorded for key, or "" if there is none.
func (v *Validator) Error(key string) string {
	return v.errors[key]
}

func (v *Validator) Errors() map[string]string {
	return v.errors
}

func (v *Validator) Check(condition bool, key, msg string) {
	if !condition {
		v.AddError(key, msg)
	}
}

func MinChars(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// PermittedValue reports whether value is one of permittedValues.
func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	return slices.Contains(permittedValues, value)
}

// ContainsDigit reports whether value has at least one ASCII digit.
func ContainsDigit(value string) bool {
	return strings.ContainsAny(value, "0123456789")
}

// SingleLine reports whether value has no line terminators.
func SingleLine(value string) bool {
	return !strings.ContainsAny(value, "\n\r\u2028\u2029")
}

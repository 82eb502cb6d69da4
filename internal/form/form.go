// Package form holds the state of a signup form: the field values, the
// per-field validation messages and the overall validity derived from them.
//
// A Form is an immutable snapshot. Every change returns a new Form, so a
// value can be handed to a renderer or another goroutine without copying.
package form

import (
	"fmt"
	"maps"
)

// ErrorState maps a field to its validation message. A field is absent until
// it has been validated once; an empty message means the value passed.
type ErrorState map[FieldName]string

// CrossFieldPolicy decides what happens to fields that depend on a field
// that just changed.
type CrossFieldPolicy int

const (
	// RevalidateDependents re-checks an already validated confirmPassword
	// whenever password changes.
	RevalidateDependents CrossFieldPolicy = iota
	// KeepStale only validates the field that changed. A confirmPassword
	// message can then disagree with the current password until the
	// confirmation itself is edited again.
	KeepStale
)

func (p CrossFieldPolicy) String() string {
	switch p {
	case RevalidateDependents:
		return "revalidate"
	case KeepStale:
		return "keep-stale"
	}
	return fmt.Sprintf("CrossFieldPolicy(%d)", int(p))
}

// ParseCrossFieldPolicy accepts the names produced by CrossFieldPolicy.String.
func ParseCrossFieldPolicy(s string) (CrossFieldPolicy, error) {
	switch s {
	case "revalidate":
		return RevalidateDependents, nil
	case "keep-stale":
		return KeepStale, nil
	}
	return 0, fmt.Errorf("unknown cross-field policy %q", s)
}

type Option func(*Form)

func WithCrossFieldPolicy(p CrossFieldPolicy) Option {
	return func(f *Form) {
		f.policy = p
	}
}

type Form struct {
	values FormState
	errors ErrorState
	valid  bool
	policy CrossFieldPolicy
}

// New returns an empty form. No field has been validated, so it is not valid.
func New(opts ...Option) Form {
	f := Form{errors: ErrorState{}}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func (f Form) Values() FormState {
	return f.values
}

// Errors returns a copy of the current messages.
func (f Form) Errors() ErrorState {
	return maps.Clone(f.errors)
}

// Error returns the message for name and whether the field has been validated.
func (f Form) Error(name FieldName) (string, bool) {
	msg, ok := f.errors[name]
	return msg, ok
}

func (f Form) Valid() bool {
	return f.valid
}

func (f Form) Policy() CrossFieldPolicy {
	return f.policy
}

// SetField stores value under name, validates that field and recomputes the
// overall validity. Messages of other fields are left as they were, except
// for dependents under RevalidateDependents. The receiver is not modified.
func (f Form) SetField(name FieldName, value string) (Form, error) {
	if !name.Valid() {
		return f, fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
	}

	next := Form{
		values: f.values.with(name, value),
		errors: maps.Clone(f.errors),
		policy: f.policy,
	}
	if next.errors == nil {
		next.errors = ErrorState{}
	}

	next.errors[name] = Validate(name, next.values)

	if f.policy == RevalidateDependents {
		for _, dep := range dependents(name) {
			if _, seen := next.errors[dep]; seen {
				next.errors[dep] = Validate(dep, next.values)
			}
		}
	}

	next.valid = computeValidity(next.errors)
	return next, nil
}

// Submit reports whether the form may be accepted. It performs no I/O; the
// caller decides how to present the outcome.
func (f Form) Submit() Outcome {
	if !f.valid {
		return Rejected()
	}
	return Accepted(f.values)
}

func computeValidity(errs ErrorState) bool {
	for _, name := range Fields {
		msg, ok := errs[name]
		if !ok || msg != "" {
			return false
		}
	}
	return true
}

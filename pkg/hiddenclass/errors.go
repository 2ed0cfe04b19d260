package hiddenclass

import "github.com/pkg/errors"

// ErrPropertyNotFound is returned by operations that require an existing
// property (UpdateProperty, DeleteProperty) when the symbol is absent.
var ErrPropertyNotFound = errors.New("hiddenclass: property not found")

// ErrPropertyAlreadyDefined is returned by AddProperty when the class (in
// dictionary mode) already carries the symbol being added; in non-dictionary
// mode this situation instead resolves to the existing transition child, so
// this error is specific to the dictionary path.
var ErrPropertyAlreadyDefined = errors.New("hiddenclass: property already defined")

// InvariantError reports a violated hidden-class invariant (spec.md §7):
// these indicate a caller bug (e.g. mutating a property map shared with a
// live sibling) rather than a recoverable runtime condition, so this
// package panics with an InvariantError rather than returning one.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string { return e.msg }

func invariantViolation(format string, args ...any) {
	panic(&InvariantError{msg: errors.Errorf(format, args...).Error()})
}

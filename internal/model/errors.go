package model

import "fmt"

// PreconditionError reports a suite that cannot drive spectrum-based repair:
// it lacks a passing case, a failing case, or both. Fatal, surfaced to the
// caller before any search work starts.
type PreconditionError struct {
	Passing int
	Failing int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf(
		"test suite must contain at least one passing and one failing case (got %d passing, %d failing)",
		e.Passing, e.Failing,
	)
}

// EngineFault reports malformed input: a program outside the supported
// subset, an unknown entry function, or corrupt ingredient data. Fatal,
// surfaced immediately.
type EngineFault struct {
	Subject string
	Detail  string
}

func (e *EngineFault) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Subject, e.Detail)
}

// NewEngineFault constructs an EngineFault for the given subject.
func NewEngineFault(subject, format string, args ...any) *EngineFault {
	return &EngineFault{Subject: subject, Detail: fmt.Sprintf(format, args...)}
}

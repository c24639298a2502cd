package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream unavailable")
	ErrAuth       = errors.New("unauthenticated")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// UpstreamError wraps a generation or export backend failure. The cause is kept
// as-is; callers may retry.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstream, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// StateConflict is returned when a section is not in a state the operation may start from.
func StateConflict(sectionID string, current GenerationState) error {
	if current.Transient() {
		return Conflictf("section %s is %s", sectionID, current)
	}
	return Conflictf("section %s cannot transition from %s", sectionID, current)
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the transform pipeline. Callers classify failures
// with errors.Is; the HTTP layer maps them to response statuses.
var (
	ErrInvalidKey         = errors.New("invalid key")
	ErrInvalidParams      = errors.New("invalid parameters")
	ErrResolutionTooLarge = errors.New("resolution too large")
	ErrProcessingFailed   = errors.New("transform failed")
)

// Errorf builds an error that matches kind through errors.Is while its
// message carries only the client-facing text, without the sentinel prefix
// that fmt.Errorf("%w: ...") would add.
func Errorf(kind error, format string, args ...any) error {
	return &taggedError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.kind }

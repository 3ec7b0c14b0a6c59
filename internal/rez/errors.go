package rez

import (
	"errors"
	"fmt"
)

// ErrEmptySnapshot indicates a stage whose snapshot was never generated.
var ErrEmptySnapshot = errors.New("stage has no snapshot")

// GenerationError reports a resolver invocation that exited non-zero or
// produced unreadable output. Stderr carries the resolver's own diagnostic.
type GenerationError struct {
	Stderr string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("snapshot generation failed: %s", e.Stderr)
	}
	return fmt.Sprintf("snapshot generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

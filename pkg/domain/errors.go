package domain

import (
	"errors"
	"fmt"
)

// ErrUnbalancedComposite is returned when a closing brace has no open composite.
var ErrUnbalancedComposite = errors.New("composite close without matching open composite")

// ErrNestedDiagram is returned when a diagram start is seen while another diagram is active.
var ErrNestedDiagram = errors.New("diagram start inside an active diagram")

// ErrUnterminatedDiagram is returned when input ends inside a diagram and the policy is to fail.
var ErrUnterminatedDiagram = errors.New("input ended before diagram end")

// ErrDuplicateInit is returned when a composite declares two different initial states
// and the policy is to fail.
var ErrDuplicateInit = errors.New("conflicting initial transition")

// ErrParentConflict is returned under the strict hierarchy policy when a state owned by
// one composite is referenced from inside another.
var ErrParentConflict = errors.New("state referenced from a second composite")

// ErrCacheMiss is returned when a model cache has no entry for a key.
var ErrCacheMiss = errors.New("cache miss")

// ParseError is a fatal structural error with the position that triggered it.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	pos := fmt.Sprintf("line %d", e.Line)
	if e.Source != "" {
		pos = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	if e.Text != "" {
		return fmt.Sprintf("%s: %v: %q", pos, e.Err, e.Text)
	}
	return fmt.Sprintf("%s: %v", pos, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

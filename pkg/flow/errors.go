package flow

import (
	"errors"
	"fmt"
)

func as[E error](err error) bool {
	if err == nil {
		return false
	}
	p := new(E)
	return errors.As(err, p)
}

// A field of a stage (or of the pipeline itself) violates its constraint.
type ErrInvalidField struct {
	// stage name, or "" when the pipeline-level field is at fault.
	Stage string

	// field name as it appears in the descriptor file.
	Field string

	// offending value.
	Value string

	// why the value is rejected.
	Reason string
}

var AsInvalidField = as[*ErrInvalidField]

func (e *ErrInvalidField) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("invalid field %s (= %q): %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf(
		"invalid field %s (= %q) in stage %q: %s",
		e.Field, e.Value, e.Stage, e.Reason,
	)
}

package emit

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

// The destination already has content and overwriting is not permitted.
type ErrDestinationExists struct {
	Path string
}

var AsDestinationExists = as[*ErrDestinationExists]

func (e *ErrDestinationExists) Error() string {
	return fmt.Sprintf("destination already exists: %s", e.Path)
}

// Writing the manifest set to the destination failed.
//
// Unwrap gives the underlying I/O (or context) failure.
type ErrDestinationWrite struct {
	Path string

	causedBy error
}

var AsDestinationWrite = as[*ErrDestinationWrite]

func (e *ErrDestinationWrite) Error() string {
	return fmt.Sprintf("cannot write to %s: %s", e.Path, e.causedBy)
}

func (e *ErrDestinationWrite) Unwrap() error {
	return e.causedBy
}

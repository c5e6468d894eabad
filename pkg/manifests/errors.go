package manifests

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

// A stage's image reference does not conform to the registry
// reference syntax the platform expects.
type ErrUnresolvableImageReference struct {
	Stage string
	Image string

	causedBy error
}

var AsUnresolvableImageReference = as[*ErrUnresolvableImageReference]

func (e *ErrUnresolvableImageReference) Error() string {
	msg := fmt.Sprintf(
		"unresolvable image reference %q in stage %q", e.Image, e.Stage,
	)
	if e.causedBy == nil {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, e.causedBy)
}

func (e *ErrUnresolvableImageReference) Unwrap() error {
	return e.causedBy
}

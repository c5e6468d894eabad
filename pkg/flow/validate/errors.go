package validate

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

// The pipeline has no stage at all.
var ErrEmptyPipeline = errors.New("pipeline has no stage")

// Two or more stages share one name.
type ErrDuplicateStageName struct {
	// the name shared by the offending stages.
	Stage string
}

var AsDuplicateStageName = as[*ErrDuplicateStageName]

func (e *ErrDuplicateStageName) Error() string {
	return fmt.Sprintf("duplicate stage name: %q", e.Stage)
}

// The target namespace is not a valid k8s namespace identifier.
type ErrInvalidNamespace struct {
	Namespace string

	// violation messages, as reported by apimachinery's validation.
	Reason string
}

var AsInvalidNamespace = as[*ErrInvalidNamespace]

func (e *ErrInvalidNamespace) Error() string {
	return fmt.Sprintf("invalid namespace %q: %s", e.Namespace, e.Reason)
}

// A resource request does not parse as a positive quantity.
type ErrInvalidResourceQuantity struct {
	Stage    string
	Resource string
	Value    string

	causedBy error
}

var AsInvalidResourceQuantity = as[*ErrInvalidResourceQuantity]

func (e *ErrInvalidResourceQuantity) Error() string {
	msg := fmt.Sprintf(
		"invalid resource quantity %s = %q in stage %q",
		e.Resource, e.Value, e.Stage,
	)
	if e.causedBy == nil {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, e.causedBy)
}

func (e *ErrInvalidResourceQuantity) Unwrap() error {
	return e.causedBy
}

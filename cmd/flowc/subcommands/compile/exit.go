package compile

import (
	"errors"
	"io/fs"

	"github.com/flowc-project/flowc/pkg/emit"
	"github.com/flowc-project/flowc/pkg/flow"
	"github.com/flowc-project/flowc/pkg/flow/validate"
	"github.com/flowc-project/flowc/pkg/manifests"
)

func asPathError(err error) bool {
	p := new(*fs.PathError)
	return errors.As(err, p)
}

// process exit codes of `flowc compile`.
const (
	ExitOK         = 0
	ExitValidation = 1
	ExitSynthesis  = 2
	ExitIO         = 3
)

// Classify maps a compile failure to its exit code.
//
// Descriptor and validation failures are user-correctable input
// problems (1). Synthesis failures are 2, emission and other I/O
// failures are 3.
func Classify(err error) int {
	switch {
	case err == nil:
		return ExitOK

	case manifests.AsUnresolvableImageReference(err):
		return ExitSynthesis

	case emit.AsDestinationExists(err), emit.AsDestinationWrite(err):
		return ExitIO

	case flow.AsInvalidField(err),
		errors.Is(err, validate.ErrEmptyPipeline),
		validate.AsDuplicateStageName(err),
		validate.AsInvalidNamespace(err),
		validate.AsInvalidResourceQuantity(err):
		return ExitValidation

	// unreadable input file
	case asPathError(err):
		return ExitIO

	default:
		// descriptor parse errors and anything else user-facing
		return ExitValidation
	}
}

// ExitRecorder carries the classified exit code out of a flarc task.
//
// flarc.Run maps every task error to its own exit status; main consults
// the recorder afterwards to translate that into the documented codes.
type ExitRecorder struct {
	code int
}

func NewExitRecorder() *ExitRecorder {
	return &ExitRecorder{}
}

func (r *ExitRecorder) fail(err error) error {
	r.code = Classify(err)
	return err
}

func (r *ExitRecorder) Code() int {
	return r.code
}

// Resolve combines flarc's exit status with the recorded code.
//
// Usage errors (nothing recorded) keep flarc's status.
func (r *ExitRecorder) Resolve(flarcStatus int) int {
	if flarcStatus == 0 {
		return 0
	}
	if r.code != 0 {
		return r.code
	}
	return flarcStatus
}

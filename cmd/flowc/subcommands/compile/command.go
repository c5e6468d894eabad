package compile

import (
	"context"
	"fmt"
	"log"

	"github.com/flowc-project/flowc/pkg/emit"
	"github.com/flowc-project/flowc/pkg/flow"
	"github.com/flowc-project/flowc/pkg/flow/validate"
	"github.com/flowc-project/flowc/pkg/manifests"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Input      string `flag:"input" alias:"i" metavar:"path/to/pipeline.yaml" help:"Pipeline descriptor file to compile."`
	Output     string `flag:"output" alias:"o" metavar:"path" help:"Output directory (or file, with --single-file)."`
	Namespace  string `flag:"namespace" metavar:"name" help:"Target namespace. Overrides the descriptor's namespace."`
	Monitoring bool   `flag:"monitoring" help:"Synthesize monitoring manifests even if the descriptor does not ask for them."`
	Overwrite  bool   `flag:"overwrite" help:"Replace the output if it already has content."`
	SingleFile bool   `flag:"single-file" help:"Write one multi-document YAML file instead of one file per manifest."`
}

func New(rec *ExitRecorder) (flarc.Command, error) {
	return flarc.NewCommand(
		"Compile a pipeline descriptor into Kubernetes manifests.",

		Flag{},
		flarc.Args{},
		Task(rec),
		flarc.WithDescription(`
Compile a pipeline descriptor into Deployment + Service manifests,
one pair per stage, plus a ServiceMonitor per stage when monitoring
is enabled.

Write one file per manifest into a directory:

	{{ .Command }} -i pipeline.yaml -o ./config

Write everything into a single multi-document file:

	{{ .Command }} -i pipeline.yaml -o manifests.yaml --single-file

Exit status: 0 = ok, 1 = the descriptor is invalid,
2 = synthesis failed, 3 = output could not be written.
`),
	)
}

func Task(rec *ExitRecorder) flarc.Task[Flag] {
	return func(ctx context.Context, cl flarc.Commandline[Flag], _ []any) error {
		logger := log.New(cl.Stderr(), fmt.Sprintf("[%s] ", cl.Fullname()), log.LstdFlags)

		flags := cl.Flags()
		if flags.Input == "" {
			return fmt.Errorf("%w: --input is required", flarc.ErrUsage)
		}
		if flags.Output == "" {
			return fmt.Errorf("%w: --output is required", flarc.ErrUsage)
		}

		descriptor, err := flow.Load(flags.Input)
		if err != nil {
			return rec.fail(fmt.Errorf("cannot load %s: %w", flags.Input, err))
		}
		if flags.Namespace != "" {
			descriptor = descriptor.WithNamespace(flags.Namespace)
		}
		if flags.Monitoring {
			descriptor = descriptor.WithMonitoring()
		}

		validated, err := validate.Validate(descriptor)
		if err != nil {
			return rec.fail(err)
		}

		set, err := manifests.Synthesize(validated)
		if err != nil {
			return rec.fail(err)
		}

		result, err := emit.Emit(ctx, set, emit.Destination{
			Path:       flags.Output,
			SingleFile: flags.SingleFile,
			Overwrite:  flags.Overwrite,
		})
		if err != nil {
			return rec.fail(err)
		}

		logger.Printf(
			"compiled %d stages into %d manifests: %s",
			len(validated.Stages()), set.Len(), result.Destination,
		)
		return nil
	}
}

package version

import (
	"context"
	"fmt"

	"github.com/flowc-project/flowc/pkg/buildtime"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show version of this command.",
		struct{}{},
		flarc.Args{},
		func(ctx context.Context, c flarc.Commandline[struct{}], a []any) error {
			fmt.Fprintln(c.Stdout(), buildtime.VERSION())
			return nil
		},
	)
}

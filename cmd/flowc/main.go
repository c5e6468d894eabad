package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"

	"github.com/flowc-project/flowc/cmd/flowc/subcommands/compile"
	"github.com/flowc-project/flowc/cmd/flowc/subcommands/version"
	"github.com/flowc-project/flowc/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", name), log.LstdFlags)

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	rec := compile.NewExitRecorder()
	compileCmd := try.To(compile.New(rec)).OrFatal(logger)
	versionCmd := try.To(version.New()).OrFatal(logger)

	flowc := try.To(
		flarc.NewCommandGroup(
			"Compile declarative pipelines into Kubernetes manifests",
			struct{}{},
			flarc.WithSubcommand("compile", compileCmd),
			flarc.WithSubcommand("version", versionCmd),
		),
	).OrFatal(logger)

	os.Exit(rec.Resolve(flarc.Run(ctx, flowc, flarc.WithHelp(true))))
}

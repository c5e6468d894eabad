package compile_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowc-project/flowc/cmd/flowc/subcommands/compile"
	"github.com/flowc-project/flowc/cmd/flowc/subcommands/internal/commandline"
	"github.com/flowc-project/flowc/pkg/utils/cmp"
	"github.com/flowc-project/flowc/pkg/utils/slices"
	"github.com/flowc-project/flowc/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func run(t *testing.T, flags compile.Flag) (*compile.ExitRecorder, error) {
	t.Helper()

	rec := compile.NewExitRecorder()
	task := compile.Task(rec)
	cl := commandline.MockCommandline[compile.Flag]{
		Fullname_: "flowc compile",
		Stdin_:    nil,
		Stdout_:   io.Discard,
		Stderr_:   io.Discard,
		Flags_:    flags,
		Args_:     map[string][]string{},
	}

	err := task(context.Background(), cl, nil)
	return rec, err
}

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	descriptor := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(descriptor, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return descriptor
}

const clipSearchDescriptor = `
namespace: clip-search
monitoring: true
stages:
  - name: encoder
    image: registry/clip-encoder:latest
  - name: indexer
    image: registry/simple-indexer:latest
`

func TestCompile_EndToEnd(t *testing.T) {
	descriptor := writeDescriptor(t, clipSearchDescriptor)
	output := filepath.Join(t.TempDir(), "config")

	rec, err := run(t, compile.Flag{Input: descriptor, Output: output})
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if rec.Code() != compile.ExitOK {
		t.Errorf("exit code: (actual, expected) = (%d, %d)", rec.Code(), compile.ExitOK)
	}

	entries := try.To(os.ReadDir(output)).OrFatal(t)
	names := slices.Map(entries, os.DirEntry.Name)

	// 2 stages x (deployment, service, servicemonitor)
	expected := []string{
		"encoder-deployment.yaml",
		"encoder-service.yaml",
		"encoder-servicemonitor.yaml",
		"indexer-deployment.yaml",
		"indexer-service.yaml",
		"indexer-servicemonitor.yaml",
	}
	if !cmp.SliceEq(names, expected) {
		t.Errorf("files: (actual, expected) = (%v, %v)", names, expected)
	}
}

func TestCompile_EndToEnd_DuplicateStage(t *testing.T) {
	descriptor := writeDescriptor(t, `
namespace: clip-search
monitoring: true
stages:
  - name: encoder
    image: registry/clip-encoder:latest
  - name: encoder
    image: registry/simple-indexer:latest
`)
	output := filepath.Join(t.TempDir(), "config")

	rec, err := run(t, compile.Flag{Input: descriptor, Output: output})
	if err == nil {
		t.Fatal("no error is caused")
	}
	if rec.Code() != compile.ExitValidation {
		t.Errorf("exit code: (actual, expected) = (%d, %d)", rec.Code(), compile.ExitValidation)
	}

	// nothing is emitted
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("output was created")
	}
}

func TestCompile_FlagHandling(t *testing.T) {
	t.Run("missing --input is a usage error", func(t *testing.T) {
		_, err := run(t, compile.Flag{Output: "somewhere"})
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("missing --output is a usage error", func(t *testing.T) {
		_, err := run(t, compile.Flag{Input: "somewhere"})
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("--namespace overrides the descriptor", func(t *testing.T) {
		descriptor := writeDescriptor(t, clipSearchDescriptor)
		output := filepath.Join(t.TempDir(), "manifests.yaml")

		_, err := run(t, compile.Flag{
			Input: descriptor, Output: output,
			Namespace: "staging", SingleFile: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		content := string(try.To(os.ReadFile(output)).OrFatal(t))
		if !containsLine(content, "namespace: staging") {
			t.Error("namespace override is not reflected in the output")
		}
	})

	t.Run("--monitoring forces monitoring manifests", func(t *testing.T) {
		descriptor := writeDescriptor(t, `
namespace: clip-search
stages:
  - name: encoder
    image: registry/clip-encoder:latest
`)
		output := filepath.Join(t.TempDir(), "config")

		_, err := run(t, compile.Flag{
			Input: descriptor, Output: output, Monitoring: true,
		})
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if _, err := os.Stat(
			filepath.Join(output, "encoder-servicemonitor.yaml"),
		); err != nil {
			t.Error("servicemonitor manifest is not written")
		}
	})

	t.Run("an occupied output without --overwrite is an I/O failure", func(t *testing.T) {
		descriptor := writeDescriptor(t, clipSearchDescriptor)
		output := filepath.Join(t.TempDir(), "config")
		if err := os.MkdirAll(output, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(
			filepath.Join(output, "keep.txt"), []byte("keep"), 0644,
		); err != nil {
			t.Fatal(err)
		}

		rec, err := run(t, compile.Flag{Input: descriptor, Output: output})
		if err == nil {
			t.Fatal("no error is caused")
		}
		if rec.Code() != compile.ExitIO {
			t.Errorf("exit code: (actual, expected) = (%d, %d)", rec.Code(), compile.ExitIO)
		}
	})

	t.Run("a missing input file is an I/O failure", func(t *testing.T) {
		rec, err := run(t, compile.Flag{
			Input:  filepath.Join(t.TempDir(), "no-such.yaml"),
			Output: filepath.Join(t.TempDir(), "config"),
		})
		if err == nil {
			t.Fatal("no error is caused")
		}
		if rec.Code() != compile.ExitIO {
			t.Errorf("exit code: (actual, expected) = (%d, %d)", rec.Code(), compile.ExitIO)
		}
	})
}

func containsLine(content string, line string) bool {
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

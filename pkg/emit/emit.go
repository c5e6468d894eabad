package emit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flowc-project/flowc/pkg/manifests"
	"github.com/flowc-project/flowc/pkg/utils/slices"
	"sigs.k8s.io/yaml"
)

// separator between documents in a multi-document YAML stream.
const documentSeparator = "---\n"

// Where and how a manifest set should be written.
type Destination struct {
	// path of the output file or directory.
	Path string

	// write one multi-document file instead of one file per manifest.
	SingleFile bool

	// replace existing content at Path.
	Overwrite bool

	// abort the write after this long. Zero means no limit.
	Timeout time.Duration
}

// What an Emit call wrote.
type Result struct {
	// the destination path, as given.
	Destination string

	// file names written, relative to the destination directory.
	// In single-file mode this holds the destination's base name only.
	Files []string
}

// Render serializes the whole set into one multi-document YAML stream,
// in set order. Byte-identical across calls for equal sets.
func Render(set manifests.Set) ([]byte, error) {
	buf := new(bytes.Buffer)
	for nth, m := range set.Items() {
		doc, err := renderDocument(m)
		if err != nil {
			return nil, err
		}
		if 0 < nth {
			buf.WriteString(documentSeparator)
		}
		buf.Write(doc)
	}
	return buf.Bytes(), nil
}

// FileName gives the name a manifest is written under in directory mode.
func FileName(m manifests.Manifest) string {
	return fmt.Sprintf("%s-%s.yaml", m.Stage, strings.ToLower(string(m.Kind)))
}

// Emit writes a manifest set to persistent storage.
//
// The write is all-or-nothing from the caller's perspective: every
// document is rendered up front, writes go to a staging path next to
// the destination, and the staging path is renamed into place only
// when the whole set is on disk. On any failure, including context
// cancellation or timeout, the staging path is removed and the
// destination is left as it was.
func Emit(ctx context.Context, set manifests.Set, dest Destination) (*Result, error) {
	if dest.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dest.Timeout)
		defer cancel()
	}

	if dest.SingleFile {
		return emitFile(ctx, set, dest)
	}
	return emitDirectory(ctx, set, dest)
}

func emitFile(ctx context.Context, set manifests.Set, dest Destination) (*Result, error) {
	content, err := Render(set)
	if err != nil {
		return nil, err
	}

	if s, err := os.Stat(dest.Path); err == nil {
		if s.IsDir() {
			return nil, &ErrDestinationWrite{
				Path:     dest.Path,
				causedBy: fmt.Errorf("%s is a directory", dest.Path),
			}
		}
		if !dest.Overwrite {
			return nil, &ErrDestinationExists{Path: dest.Path}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}

	staging, err := os.CreateTemp(
		filepath.Dir(dest.Path), "."+filepath.Base(dest.Path)+"-*",
	)
	if err != nil {
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}
	stagingPath := staging.Name()
	discard := func() {
		staging.Close()
		os.Remove(stagingPath)
	}

	if _, err := staging.Write(content); err != nil {
		discard()
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}
	if err := staging.Close(); err != nil {
		os.Remove(stagingPath)
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}
	if err := os.Chmod(stagingPath, 0644); err != nil {
		os.Remove(stagingPath)
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}

	// rename replaces the destination atomically, also in overwrite mode.
	if err := os.Rename(stagingPath, dest.Path); err != nil {
		os.Remove(stagingPath)
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}

	return &Result{
		Destination: dest.Path,
		Files:       []string{filepath.Base(dest.Path)},
	}, nil
}

func emitDirectory(ctx context.Context, set manifests.Set, dest Destination) (*Result, error) {
	type document struct {
		name    string
		content []byte
	}

	docs, err := slices.MapUntilError(set.Items(), func(m manifests.Manifest) (document, error) {
		content, err := renderDocument(m)
		if err != nil {
			return document{}, err
		}
		return document{name: FileName(m), content: content}, nil
	})
	if err != nil {
		return nil, err
	}

	destIsEmptyDir := false
	if s, err := os.Stat(dest.Path); err == nil {
		if !s.IsDir() {
			return nil, &ErrDestinationWrite{
				Path:     dest.Path,
				causedBy: fmt.Errorf("%s is not a directory", dest.Path),
			}
		}
		entries, err := os.ReadDir(dest.Path)
		if err != nil {
			return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
		}
		if 0 < len(entries) && !dest.Overwrite {
			return nil, &ErrDestinationExists{Path: dest.Path}
		}
		destIsEmptyDir = len(entries) == 0
	}

	staging, err := os.MkdirTemp(
		filepath.Dir(dest.Path), "."+filepath.Base(dest.Path)+"-*",
	)
	if err != nil {
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}
	discard := func() { os.RemoveAll(staging) }

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			discard()
			return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
		}
		if err := os.WriteFile(
			filepath.Join(staging, doc.name), doc.content, 0644,
		); err != nil {
			discard()
			return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
		}
		names = append(names, doc.name)
	}

	if err := os.Chmod(staging, 0755); err != nil {
		discard()
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}

	// the destination is touched only now, with the full set staged.
	if destIsEmptyDir {
		if err := os.Remove(dest.Path); err != nil {
			discard()
			return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
		}
	} else if dest.Overwrite {
		if err := os.RemoveAll(dest.Path); err != nil {
			discard()
			return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
		}
	}
	if err := os.Rename(staging, dest.Path); err != nil {
		discard()
		return nil, &ErrDestinationWrite{Path: dest.Path, causedBy: err}
	}

	return &Result{Destination: dest.Path, Files: names}, nil
}

func renderDocument(m manifests.Manifest) ([]byte, error) {
	content, err := yaml.Marshal(m.Body)
	if err != nil {
		return nil, fmt.Errorf(
			"cannot serialize %s manifest of stage %q: %w", m.Kind, m.Stage, err,
		)
	}
	return content, nil
}

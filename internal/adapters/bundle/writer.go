// Package bundle writes validated submissions into the orchestrator's
// submissions directory.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/jberros/btcvol-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	bundleDirMode  = 0o755
	bundleFileMode = 0o644

	modelFileName        = "main.py"
	requirementsFileName = "requirements.txt"
	manifestFileName     = "submission.toml"
)

type Writer struct {
	base  string
	force bool
}

var _ ports.BundleWriter = (*Writer)(nil)

func NewWriter(base string, force bool) *Writer {
	return &Writer{base: base, force: force}
}

// Write creates <base>/<name>/ holding main.py, requirements.txt, and the
// submission manifest. An existing directory is an error unless the writer
// was created with force, in which case it is replaced wholesale.
func (w *Writer) Write(ctx context.Context, sub domain.Submission, createdAt time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := w.targetDir(sub.Name)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dir); err == nil {
		if !w.force {
			return "", fmt.Errorf("%w: %s (use --force to replace)", domain.ErrSubmissionExists, dir)
		}
		if err := os.RemoveAll(dir); err != nil {
			return "", fmt.Errorf("remove existing submission: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat submission directory: %w", err)
	}

	if err := os.MkdirAll(dir, bundleDirMode); err != nil {
		return "", fmt.Errorf("create submission directory: %w", err)
	}

	code := sub.Code
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if err := os.WriteFile(filepath.Join(dir, modelFileName), []byte(code), bundleFileMode); err != nil {
		return "", fmt.Errorf("write model source: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, requirementsFileName),
		[]byte(requirementsFile(sub.Requirements)), bundleFileMode); err != nil {
		return "", fmt.Errorf("write requirements: %w", err)
	}

	if err := w.writeManifest(dir, sub, createdAt); err != nil {
		return "", err
	}

	return dir, nil
}

// targetDir resolves the bundle directory and refuses names whose cleaned
// path would escape the submissions base.
func (w *Writer) targetDir(name domain.SubmissionName) (string, error) {
	base, err := filepath.Abs(w.base)
	if err != nil {
		return "", fmt.Errorf("resolve submissions directory: %w", err)
	}

	dir := filepath.Join(base, string(name))
	if filepath.Dir(dir) != base || dir == base {
		return "", fmt.Errorf("%w: %q escapes the submissions directory", domain.ErrInvalidSubmissionName, name)
	}

	return dir, nil
}

func requirementsFile(reqs []domain.Requirement) string {
	lines := make([]string, 0, len(reqs))
	for _, req := range reqs {
		lines = append(lines, req.String())
	}

	return strings.Join(lines, "\n") + "\n"
}

type manifest struct {
	Name         string   `toml:"name"`
	ModelID      string   `toml:"model_id"`
	TrackerClass string   `toml:"tracker_class"`
	SourceFile   string   `toml:"source_file"`
	CreatedAt    string   `toml:"created_at"`
	Requirements []string `toml:"requirements"`
}

func (w *Writer) writeManifest(dir string, sub domain.Submission, createdAt time.Time) error {
	reqs := make([]string, 0, len(sub.Requirements))
	for _, req := range sub.Requirements {
		reqs = append(reqs, req.String())
	}

	data, err := toml.Marshal(manifest{
		Name:         string(sub.Name),
		ModelID:      string(sub.ModelID),
		TrackerClass: sub.TrackerClass,
		SourceFile:   filepath.Base(sub.SourcePath),
		CreatedAt:    createdAt.UTC().Format(time.RFC3339),
		Requirements: reqs,
	})
	if err != nil {
		return fmt.Errorf("encode submission manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, manifestFileName), data, bundleFileMode); err != nil {
		return fmt.Errorf("write submission manifest: %w", err)
	}

	return nil
}

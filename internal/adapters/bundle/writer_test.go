package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission() domain.Submission {
	return domain.Submission{
		SourcePath:   "/home/user/my_model.py",
		Name:         "my-model",
		ModelID:      "12345",
		TrackerClass: "GarchTracker",
		Code:         "import numpy as np\n\nclass GarchTracker(TrackerBase):\n    pass",
		Requirements: []domain.Requirement{
			{Package: "numpy", Constraint: ">=1.24.0"},
			{Package: "scipy", Constraint: ">=1.10.0"},
		},
	}
}

func TestWriterCreatesBundle(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	w := NewWriter(base, false)

	dir, err := w.Write(context.Background(), testSubmission(), time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "my-model"), dir)

	code, err := os.ReadFile(filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "import numpy as np\n\nclass GarchTracker(TrackerBase):\n    pass\n", string(code))

	reqs, err := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	require.NoError(t, err)
	assert.Equal(t, "numpy>=1.24.0\nscipy>=1.10.0\n", string(reqs))

	manifest, err := os.ReadFile(filepath.Join(dir, "submission.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "name = 'my-model'")
	assert.Contains(t, string(manifest), "model_id = '12345'")
	assert.Contains(t, string(manifest), "source_file = 'my_model.py'")
	assert.Contains(t, string(manifest), "2026-08-31T12:00:00Z")
}

func TestWriterRejectsExistingDirWithoutForce(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "my-model"), 0o755))

	_, err := NewWriter(base, false).Write(context.Background(), testSubmission(), time.Now())
	require.ErrorIs(t, err, domain.ErrSubmissionExists)
}

func TestWriterForceReplacesExistingDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	existing := filepath.Join(base, "my-model")
	require.NoError(t, os.MkdirAll(existing, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "stale.txt"), []byte("old"), 0o644))

	dir, err := NewWriter(base, true).Write(context.Background(), testSubmission(), time.Now())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "stale.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "main.py"))
	assert.NoError(t, err)
}

func TestWriterRefusesEscapingNames(t *testing.T) {
	t.Parallel()

	w := NewWriter(t.TempDir(), false)
	for _, name := range []string{"../../etc", "..", "a/b", ""} {
		_, err := w.Write(context.Background(), domain.Submission{Name: domain.SubmissionName(name)}, time.Now())
		require.ErrorIs(t, err, domain.ErrInvalidSubmissionName, "name=%q", name)
	}
}

func TestWriterCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWriter(t.TempDir(), false).Write(ctx, testSubmission(), time.Now())
	require.ErrorIs(t, err, context.Canceled)
}

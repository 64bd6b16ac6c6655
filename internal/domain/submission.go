package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type SubmissionName string

type ModelID string

// Model ids start above the range reserved for the seeded baseline models.
const modelIDBase = 12315

var (
	nameInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	nameDashRuns     = regexp.MustCompile(`-+`)
)

// ParseSubmissionName sanitizes a user-provided name into the form the
// orchestrator expects: lowercase alphanumerics and single dashes. Names
// that would resolve outside the submissions directory are rejected rather
// than repaired.
func ParseSubmissionName(raw string) (SubmissionName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidSubmissionName)
	}
	if strings.Contains(trimmed, "..") || strings.ContainsAny(trimmed, `/\`) || filepath.IsAbs(trimmed) {
		return "", fmt.Errorf("%w: %q must not contain path separators", ErrInvalidSubmissionName, raw)
	}

	name := nameInvalidChars.ReplaceAllString(strings.ToLower(trimmed), "-")
	name = strings.Trim(nameDashRuns.ReplaceAllString(name, "-"), "-")
	if name == "" {
		return "", fmt.Errorf("%w: %q has no usable characters", ErrInvalidSubmissionName, raw)
	}

	return SubmissionName(name), nil
}

// GenerateSubmissionName derives a name from the model source filename and
// the submission time, used when --name is not given.
func GenerateSubmissionName(sourcePath string, now time.Time) SubmissionName {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	name, err := ParseSubmissionName(fmt.Sprintf("%s-%d", stem, now.Unix()))
	if err != nil {
		return SubmissionName(fmt.Sprintf("submission-%d", now.Unix()))
	}

	return name
}

func NewModelID(now time.Time) ModelID {
	return ModelID(strconv.Itoa(modelIDBase + int(now.Unix()%10000)))
}

type Requirement struct {
	Package    string
	Constraint string
}

func (r Requirement) String() string {
	return r.Package + r.Constraint
}

// Submission is the packaged model as it lands in the submissions
// directory: the prepared source, the resolved name and id, and the
// requirements detected from its imports. Built once per invocation.
type Submission struct {
	SourcePath   string
	Name         SubmissionName
	ModelID      ModelID
	TrackerClass string
	Code         string
	Requirements []Requirement
}

package domain

const (
	CrunchID            = "btcvol"
	DefaultCruncherID   = "test_1"
	DesiredStateRunning = "RUNNING"
)

// ConfigEntry is one element of the orchestrator's models.dev.yml list.
// Entries persist across invocations; everything else is per-run state.
type ConfigEntry struct {
	ID           ModelID
	Name         string
	SubmissionID string
	CrunchID     string
	DesiredState string
	CruncherID   string
}

func NewConfigEntry(sub Submission) ConfigEntry {
	return ConfigEntry{
		ID:           sub.ModelID,
		Name:         string(sub.Name),
		SubmissionID: string(sub.Name),
		CrunchID:     CrunchID,
		DesiredState: DesiredStateRunning,
		CruncherID:   DefaultCruncherID,
	}
}

type DeployStatus string

const (
	StatusRunning DeployStatus = "RUNNING"
	StatusFailed  DeployStatus = "FAILED"
	StatusUnknown DeployStatus = "UNKNOWN"
)

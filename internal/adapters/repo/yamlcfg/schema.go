package yamlcfg

import "github.com/jberros/btcvol-cli/internal/domain"

// fileSchema mirrors models.dev.yml. Top-level keys other than `models`
// belong to the orchestrator; the inline map carries them through
// untouched so a submit never strips unrelated configuration.
type fileSchema struct {
	Models []modelSchema  `yaml:"models"`
	Extra  map[string]any `yaml:",inline"`
}

type modelSchema struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	SubmissionID string `yaml:"submission_id"`
	CrunchID     string `yaml:"crunch_id"`
	DesiredState string `yaml:"desired_state"`
	CruncherID   string `yaml:"cruncher_id"`
}

func toSchema(entry domain.ConfigEntry) modelSchema {
	return modelSchema{
		ID:           string(entry.ID),
		Name:         entry.Name,
		SubmissionID: entry.SubmissionID,
		CrunchID:     entry.CrunchID,
		DesiredState: entry.DesiredState,
		CruncherID:   entry.CruncherID,
	}
}

func fromSchema(entry modelSchema) domain.ConfigEntry {
	return domain.ConfigEntry{
		ID:           domain.ModelID(entry.ID),
		Name:         entry.Name,
		SubmissionID: entry.SubmissionID,
		CrunchID:     entry.CrunchID,
		DesiredState: entry.DesiredState,
		CruncherID:   entry.CruncherID,
	}
}

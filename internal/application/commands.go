package application

import "github.com/jberros/btcvol-cli/internal/domain"

type SubmitRequest struct {
	// SourcePath points at the user's .py or .ipynb model file.
	SourcePath string
	// Name is the raw --name value; empty means auto-generate.
	Name string
}

type SubmitResult struct {
	Name         domain.SubmissionName
	ModelID      domain.ModelID
	TrackerClass string
	BundleDir    string
	Requirements []domain.Requirement
	// Warnings are non-fatal notes for the user, e.g. unpinned packages.
	Warnings []string
}

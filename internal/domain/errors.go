package domain

import "errors"

var (
	ErrUnsupportedModelFile  = errors.New("model file must be .py or .ipynb")
	ErrEmptyNotebook         = errors.New("notebook contains no usable code cells")
	ErrTrackerNotFound       = errors.New("no TrackerBase subclass found")
	ErrAmbiguousTracker      = errors.New("more than one TrackerBase subclass found")
	ErrMissingPredictMethod  = errors.New("tracker class does not define predict(asset, horizon, step)")
	ErrInvalidSubmissionName = errors.New("invalid submission name")
	ErrSubmissionExists      = errors.New("submission already exists")
	ErrModelEntryNotFound    = errors.New("model entry not found")
	ErrDeploymentFailed      = errors.New("orchestrator restart failed")
)

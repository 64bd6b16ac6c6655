package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/jberros/btcvol-cli/internal/notebook"
	"github.com/jberros/btcvol-cli/internal/ports"
	"github.com/jberros/btcvol-cli/internal/pysource"
)

// SubmitService runs the submission pipeline: load the source, extract it
// from a notebook if needed, validate the tracker class statically, write
// the bundle, and upsert the models config entry. Deployment is a separate
// step so callers can skip it or wrap the wait in progress UI.
type SubmitService struct {
	repo    ports.ModelConfigRepository
	orch    ports.Orchestrator
	bundles ports.BundleWriter
	clock   ports.Clock
}

func NewSubmitService(repo ports.ModelConfigRepository, orch ports.Orchestrator, bundles ports.BundleWriter, clock ports.Clock) *SubmitService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SubmitService{
		repo:    repo,
		orch:    orch,
		bundles: bundles,
		clock:   clock,
	}
}

func (s *SubmitService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	code, err := loadSource(req.SourcePath)
	if err != nil {
		return SubmitResult{}, err
	}

	code = pysource.Normalize(code)
	trackerClass, err := pysource.Validate(code)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("validate model source: %w", err)
	}

	requirements, warnings := pysource.Requirements(pysource.ScanImports(code))

	now := s.clock.Now()
	name := domain.GenerateSubmissionName(req.SourcePath, now)
	if req.Name != "" {
		name, err = domain.ParseSubmissionName(req.Name)
		if err != nil {
			return SubmitResult{}, err
		}
	}

	sub := domain.Submission{
		SourcePath:   req.SourcePath,
		Name:         name,
		ModelID:      domain.NewModelID(now),
		TrackerClass: trackerClass,
		Code:         code,
		Requirements: requirements,
	}

	dir, err := s.bundles.Write(ctx, sub, now)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("write submission bundle: %w", err)
	}

	// The bundle stays in place if the config update fails: the tool is
	// single-shot and the user fixes the config and re-runs with --force.
	if err := s.repo.Upsert(ctx, domain.NewConfigEntry(sub)); err != nil {
		return SubmitResult{}, fmt.Errorf("update models config: %w", err)
	}

	return SubmitResult{
		Name:         sub.Name,
		ModelID:      sub.ModelID,
		TrackerClass: trackerClass,
		BundleDir:    dir,
		Requirements: requirements,
		Warnings:     warnings,
	}, nil
}

func (s *SubmitService) Deploy(ctx context.Context) error {
	if err := s.orch.Restart(ctx); err != nil {
		return fmt.Errorf("restart orchestrator: %w", err)
	}

	return nil
}

func (s *SubmitService) WaitForDeployment(ctx context.Context, id domain.ModelID, timeout time.Duration) (domain.DeployStatus, error) {
	status, err := s.orch.WaitForModel(ctx, id, timeout)
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("wait for deployment: %w", err)
	}

	return status, nil
}

func (s *SubmitService) TailLogs(ctx context.Context, tail int) (string, error) {
	return s.orch.Logs(ctx, tail)
}

func (s *SubmitService) ListModels(ctx context.Context) ([]domain.ConfigEntry, error) {
	return s.repo.List(ctx)
}

func loadSource(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read model file: %w", err)
		}
		return string(data), nil
	case ".ipynb":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open notebook: %w", err)
		}
		defer f.Close()

		code, err := notebook.Extract(f)
		if err != nil {
			return "", fmt.Errorf("extract notebook %s: %w", filepath.Base(path), err)
		}
		return code, nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedModelFile, path)
	}
}

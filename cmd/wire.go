package cmd

import (
	"fmt"
	"time"

	"github.com/jberros/btcvol-cli/internal/adapters/bundle"
	"github.com/jberros/btcvol-cli/internal/adapters/orchestrator/docker"
	"github.com/jberros/btcvol-cli/internal/adapters/repo/yamlcfg"
	"github.com/jberros/btcvol-cli/internal/application"
	"github.com/jberros/btcvol-cli/internal/ports"
	"github.com/spf13/viper"
)

// Each key resolves flag > env > ~/.btcvol/config.toml > default, on the
// same viper instance the repository reads models.path from.
const (
	submissionDirKey = "submissions.dir"
	containerKey     = "orchestrator.container"
	viewURLKey       = "orchestrator.view_url"

	defaultSubmissionDir = "deployment/model-orchestrator-local/data/submissions"
	defaultViewURL       = "http://localhost:3000/models"
	defaultWaitTimeout   = 60 * time.Second
)

type app struct {
	service     *application.SubmitService
	waitTimeout time.Duration
	viewURL     string
}

type wireOptions struct {
	modelsConfig  string
	submissionDir string
	container     string
	force         bool
}

func wireApp(opts wireOptions) (*app, error) {
	cfg := viper.New()

	cfg.SetDefault(submissionDirKey, defaultSubmissionDir)
	cfg.SetDefault(containerKey, docker.DefaultContainer)
	cfg.SetDefault(viewURLKey, defaultViewURL)
	for key, envVar := range map[string]string{
		submissionDirKey: "BTCVOL_SUBMISSION_DIR",
		containerKey:     "BTCVOL_ORCHESTRATOR",
		viewURLKey:       "BTCVOL_MODELS_URL",
	} {
		if err := cfg.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("bind %s env: %w", envVar, err)
		}
	}

	if opts.modelsConfig != "" {
		cfg.Set(yamlcfg.ModelsPathKey, opts.modelsConfig)
	}
	if opts.submissionDir != "" {
		cfg.Set(submissionDirKey, opts.submissionDir)
	}
	if opts.container != "" {
		cfg.Set(containerKey, opts.container)
	}

	// NewRepository points cfg at ~/.btcvol/config.toml and reads it, so
	// the keys above resolve against the same file as models.path.
	repo, err := yamlcfg.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire models config repository: %w", err)
	}

	orch := docker.New(cfg.GetString(containerKey))
	bundles := bundle.NewWriter(cfg.GetString(submissionDirKey), opts.force)

	return &app{
		service:     application.NewSubmitService(repo, orch, bundles, ports.SystemClock{}),
		waitTimeout: defaultWaitTimeout,
		viewURL:     cfg.GetString(viewURLKey),
	}, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/jberros/btcvol-cli/internal/application"
	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/spf13/cobra"
)

const failureLogTail = 20

type submitOptions struct {
	name          string
	submissionDir string
	modelsConfig  string
	container     string
	force         bool
	noDeploy      bool
}

func runSubmit(cmd *cobra.Command, modelFile string, opts *submitOptions) error {
	app, err := wireApp(wireOptions{
		modelsConfig:  opts.modelsConfig,
		submissionDir: opts.submissionDir,
		container:     opts.container,
		force:         opts.force,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	result, err := app.service.Submit(cmd.Context(), application.SubmitRequest{
		SourcePath: modelFile,
		Name:       opts.name,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Submission %s (model id %s) created at %s\n", result.Name, result.ModelID, result.BundleDir)
	_, _ = fmt.Fprintf(out, "Tracker class: %s\n", result.TrackerClass)
	for _, req := range result.Requirements {
		_, _ = fmt.Fprintf(out, "  requires %s\n", req)
	}
	for _, warning := range result.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}

	if opts.noDeploy {
		_, _ = fmt.Fprintln(out, "Skipping deployment (--no-deploy); run again without it to deploy.")
		return nil
	}

	if err := app.service.Deploy(cmd.Context()); err != nil {
		return err
	}

	var status domain.DeployStatus
	err = runDeployWaitSpinner(cmd.Context(), cmd.ErrOrStderr(), result.ModelID, app.waitTimeout, func(ctx context.Context) error {
		s, err := app.service.WaitForDeployment(ctx, result.ModelID, app.waitTimeout)
		status = s
		return err
	})
	if err != nil {
		return err
	}

	switch status {
	case domain.StatusRunning:
		_, _ = fmt.Fprintf(out, "Model %s is RUNNING\nView it at %s\n", result.ModelID, app.viewURL)
		return nil
	case domain.StatusFailed:
		logs, logsErr := app.service.TailLogs(cmd.Context(), failureLogTail)
		if logsErr != nil {
			return fmt.Errorf("%w: model %s reported FAILED", domain.ErrDeploymentFailed, result.ModelID)
		}
		return fmt.Errorf("%w: model %s reported FAILED\n%s", domain.ErrDeploymentFailed, result.ModelID, logs)
	default:
		return fmt.Errorf("deployment status still %s after %s; check with: btcvol-submit status --id %s",
			status, app.waitTimeout, result.ModelID)
	}
}

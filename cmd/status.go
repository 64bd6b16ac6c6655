package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jberros/btcvol-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var (
		modelID   string
		timeout   time.Duration
		container string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Poll the orchestrator for a model's deployment status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(wireOptions{container: container})
			if err != nil {
				return err
			}

			var status domain.DeployStatus
			err = runDeployWaitSpinner(cmd.Context(), cmd.ErrOrStderr(), domain.ModelID(modelID), timeout, func(ctx context.Context) error {
				s, err := app.service.WaitForDeployment(ctx, domain.ModelID(modelID), timeout)
				status = s
				return err
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Model %s: %s\n", modelID, status)
			if status == domain.StatusFailed {
				return fmt.Errorf("%w: model %s reported FAILED", domain.ErrDeploymentFailed, domain.ModelID(modelID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "id", "", "Model id to check")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultWaitTimeout, "How long to keep polling")
	cmd.Flags().StringVar(&container, "container", "", "Orchestrator container name")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

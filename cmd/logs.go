package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogsCmd() *cobra.Command {
	var (
		tail      int
		container string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print orchestrator container logs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(wireOptions{container: container})
			if err != nil {
				return err
			}

			logs, err := app.service.TailLogs(cmd.Context(), tail)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), logs)
			return err
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 100, "Number of trailing log lines")
	cmd.Flags().StringVar(&container, "container", "", "Orchestrator container name")

	return cmd
}

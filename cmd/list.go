package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var modelsConfig string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models registered in models.dev.yml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := wireApp(wireOptions{modelsConfig: modelsConfig})
			if err != nil {
				return err
			}

			entries, err := app.service.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			for _, entry := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", entry.ID, entry.Name, entry.DesiredState)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&modelsConfig, "config", "", "Path to models.dev.yml")

	return cmd
}

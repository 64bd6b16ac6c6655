package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &submitOptions{}

	rootCmd := &cobra.Command{
		Use:   "btcvol-submit MODEL_FILE",
		Short: "Submit a volatility prediction model to the local orchestrator",
		Long: "btcvol-submit packages a Tracker model (a .py file or Jupyter notebook) into\n" +
			"the local orchestrator's submissions directory, registers it in models.dev.yml,\n" +
			"and restarts the orchestrator container so the model gets built and deployed.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args[0], opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.name, "name", "", "Submission name (auto-generated from the filename if omitted)")
	flags.StringVar(&opts.submissionDir, "submission-dir", "", "Submissions base directory")
	flags.StringVar(&opts.modelsConfig, "config", "", "Path to models.dev.yml")
	flags.StringVar(&opts.container, "container", "", "Orchestrator container name")
	flags.BoolVar(&opts.force, "force", false, "Replace an existing submission with the same name")
	flags.BoolVar(&opts.noDeploy, "no-deploy", false, "Create the submission and update the config without restarting the orchestrator")

	rootCmd.AddCommand(
		newVersionCmd(),
		newListCmd(),
		newStatusCmd(),
		newLogsCmd(),
	)

	return rootCmd
}

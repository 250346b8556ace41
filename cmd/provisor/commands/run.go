package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/provisor/cmd/provisor/handlers"
)

// Run returns the run command.
func Run() *cobra.Command {
	var opts handlers.RunOptions

	cmd := &cobra.Command{
		Use:   "run <job-id>",
		Short: "Trigger a job run and wait for its outcome",
		Long: `Run triggers a run of an existing job and polls the run until it
terminates, reporting the run's result state.

Example:
  provisor run 412`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ID = args[0]
			return handlers.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Control-plane base URL (default: $PROVISOR_HOST)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Bearer token (default: $PROVISOR_TOKEN)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/provisor/cmd/provisor/handlers"
)

// Status returns the status command.
func Status() *cobra.Command {
	var opts handlers.StatusOptions

	cmd := &cobra.Command{
		Use:   "status <kind> <id>",
		Short: "Print the current state of a resource",
		Long: `Status performs a single status check without polling.

Examples:
  provisor status cluster 0214-093355-rybl3
  provisor status job 412`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Kind = args[0]
			opts.ID = args[1]
			return handlers.Status(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Control-plane base URL (default: $PROVISOR_HOST)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Bearer token (default: $PROVISOR_TOKEN)")

	return cmd
}

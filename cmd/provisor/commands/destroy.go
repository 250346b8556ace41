package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/provisor/cmd/provisor/handlers"
)

// Destroy returns the destroy command.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy <kind> <id>",
		Short: "Delete a resource and wait for the deletion to complete",
		Long: `Destroy deletes a workspace resource by kind and identifier.

For asynchronous kinds (clusters, instance pools) the command waits until
the control plane reports the resource gone; job deletion completes
immediately.

Examples:
  provisor destroy cluster 0214-093355-rybl3
  provisor destroy instance-pool pool-7f3a
  provisor destroy job 412`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Kind = args[0]
			opts.ID = args[1]
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Control-plane base URL (default: $PROVISOR_HOST)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Bearer token (default: $PROVISOR_TOKEN)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")

	return cmd
}

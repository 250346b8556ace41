package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/provisor/cmd/provisor/handlers"
)

// Provision returns the provision command.
//
// The command loads a resource spec file, creates the resource through the
// control-plane API and waits for it to reach a terminal state. Re-running
// the same spec converges on the existing resource instead of creating a
// duplicate.
//
// Environment variables:
//
//	PROVISOR_HOST:  control-plane base URL (required unless --host is given)
//	PROVISOR_TOKEN: bearer token (required unless --token is given)
func Provision() *cobra.Command {
	var opts handlers.ProvisionOptions

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create a resource and wait until it is ready",
		Long: `Provision a workspace resource from a spec file.

The spec file names the resource kind (cluster, job or instance-pool), the
resource name, and the kind-specific desired-state payload:

  kind: cluster
  name: etl-prod
  spec:
    spark_version: 13.3.x-scala2.12
    node_type_id: m5.xlarge
    num_workers: 4

The command creates the resource, polls its state until it becomes ready or
definitively fails, and prints a structured result. A resource of the same
name that already exists and is healthy is reused instead of duplicated.

Examples:
  # Provision a cluster from a spec file
  provisor provision -f cluster.yaml

  # Provision without the existing-resource check
  provisor provision -f cluster.yaml --no-converge

  # Emit the result as JSON for the surrounding automation
  provisor provision -f cluster.yaml -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SpecPath, "file", "f", "", "Path to the resource spec file (required)")
	cmd.Flags().StringVar(&opts.Host, "host", "", "Control-plane base URL (default: $PROVISOR_HOST)")
	cmd.Flags().StringVar(&opts.Token, "token", "", "Bearer token (default: $PROVISOR_TOKEN)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.NoConverge, "no-converge", false, "Skip the existing-resource lookup and always create")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

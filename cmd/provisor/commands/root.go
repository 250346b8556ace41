// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the provisor CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provisor",
		Short: "Provision workspace resources through the control-plane API",
	}

	cmd.AddCommand(Provision())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Status())
	cmd.AddCommand(Run())
	cmd.AddCommand(Version())

	return cmd
}

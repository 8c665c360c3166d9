package main

import (
	"fmt"

	"lbsim/internal/version"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root lbsim command. Run without a subcommand it
// behaves like "lbsim run".
func newRootCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "lbsim",
		Short: "Discrete-time load balancer simulation",
		Long: "lbsim simulates a load balancer fronting a pool of web servers.\n" +
			"Each clock cycle advances in-flight work, assigns queued requests,\n" +
			"admits or blocks one random arrival and scales the pool on queue pressure.",
		Version:       fmt.Sprintf("lbsim %s", version.String()),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulation(cmd, &opts)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	opts.bind(cmd)

	cmd.AddCommand(
		newRunCmd(),
		newFirewallCmd(),
	)

	return cmd
}

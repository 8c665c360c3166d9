package main

import (
	"fmt"

	"lbsim/pkg/config"
	"lbsim/pkg/firewall"
	"lbsim/pkg/request"

	"github.com/spf13/cobra"
)

// newFirewallCmd creates the "lbsim firewall" command group.
func newFirewallCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "firewall",
		Short: "Inspect the effective deny-list",
		Long: "The deny-list is the built-in blocked addresses plus the config file's\n" +
			"blocked entries plus the entries of its deny_list file.",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML or TOML config file (default $LBSIM_CONFIG)")

	cmd.AddCommand(
		newFirewallCheckCmd(&configPath),
		newFirewallListCmd(&configPath),
	)
	return cmd
}

// loadFilter builds the admission filter the simulation would start with.
func loadFilter(configPath string) (*firewall.Filter, error) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.WithDefaults().Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	blocked, err := cfg.Blocklist()
	if err != nil {
		return nil, fmt.Errorf("load deny-list: %w", err)
	}
	return firewall.New(blocked...), nil
}

// newFirewallCheckCmd creates "lbsim firewall check".
func newFirewallCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check <ip>...",
		Short: "Report whether each address would be blocked",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ip := range args {
				if err := request.ValidateIP(ip); err != nil {
					return err
				}
			}

			f, err := loadFilter(*configPath)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, ip := range args {
				verdict := "allowed"
				if f.IsBlocked(ip) {
					verdict = "blocked"
				}
				fmt.Fprintf(w, "%s: %s\n", ip, verdict)
			}
			return nil
		},
	}
}

// newFirewallListCmd creates "lbsim firewall list".
func newFirewallListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the effective deny-list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadFilter(*configPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, ip := range f.Blocked() {
				fmt.Fprintln(w, ip)
			}
			return nil
		},
	}
}

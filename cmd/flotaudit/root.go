package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "flotaudit",
		Short:        "Tenant integrity tools for FlotaHub",
		SilenceUsage: true,
	}
	cmd.AddCommand(newScanCmd())
	return cmd
}

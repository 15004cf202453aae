package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "load the project once and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(runCheckOnce(cmd.Context(), *configPath))
			return nil
		},
	}
}

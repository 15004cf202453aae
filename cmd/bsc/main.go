// Command bsc is the batch/diagnostic CLI collaborator spec.md §6
// specifies only through its exit-code contract. Built with cobra +
// pflag, replacing the teacher's stdin JSON-RPC transport loop
// (main.go) with a plain command tree: this engine is a static
// analyzer, not an LSP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightscope/bsc/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "bsc",
		Short: "bsc analyzes a dialect project for diagnostics",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "bsc.yaml", "path to the project config file")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		logging.InitStderr()
	}

	root.AddCommand(newCheckCmd(&configPath))
	root.AddCommand(newWatchCmd(&configPath))
	return root
}

// runCheckOnce loads every .brs and .xml file under opts.RootDir (the
// opts.Files globs are not consulted), validates the project
// and returns the process exit code spec.md §6 assigns: 0 clean, 1
// diagnostics with severity error present, 2 an unrecoverable engine
// error.
func runCheckOnce(ctx context.Context, configPath string) int {
	proj, opts, err := loadProject(ctx, configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	diags := proj.ValidateAll()
	return printAndExitCode(diags, opts)
}

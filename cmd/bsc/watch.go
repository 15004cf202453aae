package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brightscope/bsc/logging"
	"github.com/brightscope/bsc/util"
	"github.com/brightscope/bsc/watch"
)

func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "load the project, report diagnostics, then re-check on every file change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), *configPath)
		},
	}
}

// runWatch loads the project once, prints its initial diagnostics,
// then hands off to a watch.Watcher on the project root so every
// subsequent write or create of a file directly in that directory
// re-enters the same program.Program via OnFileChanged and reprints.
// Subdirectories are not watched.
func runWatch(ctx context.Context, configPath string) error {
	proj, opts, err := loadProject(ctx, configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	printAndExitCode(proj.ValidateAll(), opts)

	w, err := watch.New([]util.Path{proj.RootDir}, func(absPath util.Path, content string) error {
		pkgPath, ok := util.PkgFromRoot(proj.RootDir, absPath)
		if !ok {
			return nil
		}
		if err := proj.OnFileChanged(absPath, pkgPath, content); err != nil {
			return err
		}
		printAndExitCode(proj.ValidateAll(), opts)
		return nil
	})
	if err != nil {
		return err
	}
	defer w.Close()

	logging.Logger.Info("watching for changes", "root", proj.RootDir)
	return w.Run(ctx)
}

package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/brightscope/bsc/config"
	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/engineerr"
	"github.com/brightscope/bsc/program"
	"github.com/brightscope/bsc/util"
)

// loadProject reads configPath, walks the resulting RootDir for
// analyzable files (dialect source and component descriptors), and
// loads them all into a fresh program.Program.
func loadProject(ctx context.Context, configPath string) (*program.Program, config.Options, error) {
	opts, err := config.Load(configPath)
	if err != nil {
		return nil, opts, engineerr.NewInvalidRoot(configPath, err)
	}

	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, opts, engineerr.NewInvalidRoot(opts.RootDir, err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, opts, engineerr.NewInvalidRoot(root, statErr)
	}

	inputs, err := collectInputs(root)
	if err != nil {
		return nil, opts, engineerr.NewInvalidRoot(root, err)
	}

	proj := program.New(root, opts.ParseMode)
	if err := proj.LoadAll(ctx, inputs); err != nil {
		return nil, opts, engineerr.FromDescriptorParseError(root, err)
	}
	return proj, opts, nil
}

// collectInputs walks root for .brs source files and .xml component
// descriptors, deriving each one's package path relative to root.
func collectInputs(root util.Path) ([]program.InputFile, error) {
	var out []program.InputFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".brs" && ext != ".xml" {
			return nil
		}
		pkgPath, ok := util.PkgFromRoot(root, path)
		if !ok {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		out = append(out, program.InputFile{AbsPath: path, PkgPath: pkgPath, Source: string(content)})
		return nil
	})
	return out, err
}

// printAndExitCode renders diags (keyed by scope name) through opts'
// severity-override/ignore Filter and returns spec.md §6's process
// exit code.
func printAndExitCode(diagsByScope map[string][]diagnostic.Diagnostic, opts config.Options) int {
	filter := diagnostic.NewFilter(opts.DiagnosticSeverityOverrides, opts.IgnoreErrorCodes)

	hasError := false
	for _, scopeName := range sortedKeys(diagsByScope) {
		for _, d := range filter.Apply(diagsByScope[scopeName]) {
			printDiagnostic(d)
			if d.Severity == diagnostic.SeverityError {
				hasError = true
			}
		}
	}
	if hasError {
		return 1
	}
	return 0
}

func sortedKeys(m map[string][]diagnostic.Diagnostic) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

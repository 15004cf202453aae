// Package config decodes the project configuration file (spec.md §6)
// that tells cmd/bsc which files to load and how to validate them.
// Grounded on the teacher's server/config.go FaustProjectConfig /
// defaultConfig / UnmarshalJSON-with-defaults pattern, switched from
// encoding/json to gopkg.in/yaml.v3 since this dialect's own tooling
// corpus standardizes project config on YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brightscope/bsc/diagnostic"
	"github.com/brightscope/bsc/parser"
)

// Options is the full set of spec.md §6 project-config fields, decoded
// from a bsc.yaml file at the workspace root.
type Options struct {
	Files   []string `yaml:"files"`
	RootDir string   `yaml:"rootDir"`

	DiagnosticSeverityOverrides map[diagnostic.Code]diagnostic.Severity `yaml:"diagnosticSeverityOverrides"`
	IgnoreErrorCodes            []diagnostic.Code                       `yaml:"ignoreErrorCodes"`

	ParseMode parser.Mode `yaml:"parseMode"`
	Watch     bool        `yaml:"watch"`
}

// UnmarshalYAML lets parseMode be written as "baseline"/"superset" in
// bsc.yaml rather than a bare integer, and applies Defaults() for any
// field the document omits.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	type rawOptions struct {
		Files                       []string                                `yaml:"files"`
		RootDir                     string                                  `yaml:"rootDir"`
		DiagnosticSeverityOverrides map[diagnostic.Code]diagnostic.Severity `yaml:"diagnosticSeverityOverrides"`
		IgnoreErrorCodes            []diagnostic.Code                       `yaml:"ignoreErrorCodes"`
		ParseMode                   string                                  `yaml:"parseMode"`
		Watch                       *bool                                  `yaml:"watch"`
	}

	raw := rawOptions{ParseMode: "superset"}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*o = Defaults()
	o.Files = raw.Files
	if raw.RootDir != "" {
		o.RootDir = raw.RootDir
	}
	if raw.DiagnosticSeverityOverrides != nil {
		o.DiagnosticSeverityOverrides = raw.DiagnosticSeverityOverrides
	}
	if raw.IgnoreErrorCodes != nil {
		o.IgnoreErrorCodes = raw.IgnoreErrorCodes
	}
	if raw.Watch != nil {
		o.Watch = *raw.Watch
	}
	switch raw.ParseMode {
	case "baseline":
		o.ParseMode = parser.Baseline
	case "superset", "":
		o.ParseMode = parser.Superset
	default:
		o.ParseMode = parser.Superset
	}
	return nil
}

// Defaults mirrors the teacher's defaultConfig(): a project with no
// bsc.yaml still gets a sane configuration (spec.md §6's "no project
// config file" case), parsing in superset mode with watch disabled.
func Defaults() Options {
	return Options{
		RootDir:   ".",
		ParseMode: parser.Superset,
		Watch:     false,
	}
}

// Load reads and decodes path, falling back to Defaults() if path does
// not exist.
func Load(path string) (Options, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Options{}, err
	}

	opts := Defaults()
	if err := yaml.Unmarshal(content, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// IsIgnored reports whether code is named in IgnoreErrorCodes.
func (o Options) IsIgnored(code diagnostic.Code) bool {
	for _, c := range o.IgnoreErrorCodes {
		if c == code {
			return true
		}
	}
	return false
}

// SeverityOverrideFor returns the configured severity override for
// code, if any.
func (o Options) SeverityOverrideFor(code diagnostic.Code) (diagnostic.Severity, bool) {
	s, ok := o.DiagnosticSeverityOverrides[code]
	return s, ok
}

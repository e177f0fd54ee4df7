// Package config loads the compiler's option bits (spec §6) from the
// environment and, optionally, a YAML project file, layered the way
// mna/mainer-based CLIs in the teacher's ecosystem combine env vars, config
// files and flags: flags (set by the CLI) take precedence over the file,
// which takes precedence over the environment.
package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/scriptlang/cscompiler/compiler"
)

// Options is the env/file-loadable superset of compiler.Options: the same
// three bits, plus the string-struct name needed to resolve the designated
// managed wrapper for old-style strings when OldStrings is set (spec §6).
type Options struct {
	NoImportOverride bool   `env:"NOIMPORTOVERRIDE" yaml:"noImportOverride"`
	OldStrings       bool   `env:"OLDSTRINGS" yaml:"oldStrings"`
	ExportAll        bool   `env:"EXPORTALL" yaml:"exportAll"`
	StringStructName string `env:"STRINGSTRUCT" yaml:"stringStruct"`
}

// Load reads Options from environment variables prefixed with CSCOMPILE_,
// then overlays a YAML file at path if it is non-empty and exists.
func Load(path string) (Options, error) {
	var o Options
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "CSCOMPILE_"}); err != nil {
		return Options{}, err
	}
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return Options{}, err
	}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, err
	}
	return o, nil
}

// CompilerOptions projects Options down to the three bits compiler.Options
// actually carries.
func (o Options) CompilerOptions() compiler.Options {
	return compiler.Options{
		NoImportOverride: o.NoImportOverride,
		OldStrings:       o.OldStrings,
		ExportAll:        o.ExportAll,
	}
}

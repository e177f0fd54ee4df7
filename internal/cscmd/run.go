package cscmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/scriptlang/cscompiler/compiler"
	"github.com/scriptlang/cscompiler/config"
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/tokfile"
)

var (
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
)

// loadOptions reads the compiler option bits for this invocation, from
// CSCOMPILE_-prefixed env vars optionally overlaid by --config.
func (c *Cmd) loadOptions() (config.Options, error) {
	return config.Load(c.Config)
}

// printDiags renders every accumulated diagnostic to w, errors in red and
// warnings in yellow (spec §6/§7, colorized per SPEC_FULL.md's ambient
// stack), and reports whether any error-severity diagnostic was present.
func printDiags(w io.Writer, diags *diag.Handler) (hadErrors bool) {
	for _, m := range diags.Messages() {
		if m.Severity == diag.Error {
			errColor.Fprintln(w, m.String())
		} else {
			warnColor.Fprintln(w, m.String())
		}
	}
	return diags.HasErrors()
}

// compileFiles parses the given tokfiles into one stream, bootstraps a
// fresh symbol table, and runs the two-phase driver over it.
func compileFiles(opts config.Options, files []string) (*emitter.Emitter, *symtab.Table, *diag.Handler, error) {
	syms := symtab.New()
	compiler.Bootstrap(syms)
	resolveStringStruct(syms, opts)

	toks, err := tokfile.ParseFiles(files, syms)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading tokfile: %w", err)
	}

	em, diags, err := compiler.Run(toks, syms, opts.CompilerOptions(), files[0])
	if err != nil {
		return nil, nil, nil, err
	}
	return em, syms, diags, nil
}

// resolveStringStruct interns the configured string-struct type name, if
// any, as a stable symbol handle and records it on syms so the compiler can
// recognize old-style string <-> managed string-object conversions (spec §3
// data model, §4.6/§4.7). The struct's own declaration, forward or not,
// interns the same handle by name, so the order relative to parsing doesn't
// matter.
func resolveStringStruct(syms *symtab.Table, opts config.Options) {
	if opts.StringStructName == "" {
		return
	}
	syms.SetStringStruct(syms.FindOrAdd(opts.StringStructName))
}

package cscmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/scriptlang/cscompiler/callpoint"
	"github.com/scriptlang/cscompiler/compiler"
	"github.com/scriptlang/cscompiler/diag"
	"github.com/scriptlang/cscompiler/emitter"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/tokfile"
)

// Preanalyze runs PreAnalyze only: header/import collection with no
// bytecode emission (spec §2), reporting whichever diagnostics that single
// pass can already detect.
func (c *Cmd) Preanalyze(ctx context.Context, stdio mainer.Stdio, args []string) error {
	opts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	syms := symtab.New()
	compiler.Bootstrap(syms)
	resolveStringStruct(syms, opts)

	toks, err := tokfile.ParseFiles(args, syms)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	diags := &diag.Handler{}
	pre := compiler.New(compiler.PreAnalyze, opts.CompilerOptions(), toks, syms,
		emitter.New(), callpoint.New(), callpoint.New(), diags, args[0])
	// Any error pre.Run returns has already been recorded as a diagnostic
	// (spec §7 "no partial recovery"); printDiags below reports it.
	_ = pre.Run()

	if printDiags(stdio.Stderr, diags) {
		return fmt.Errorf("preanalyze: errors reported")
	}
	fmt.Fprintf(stdio.Stdout, "preanalyze: %d symbols interned (including predeclared)\n", syms.Len())
	return nil
}

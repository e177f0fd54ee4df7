package cscmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/scriptlang/cscompiler/compiler"
	"github.com/scriptlang/cscompiler/symtab"
	"github.com/scriptlang/cscompiler/tokfile"
)

// Tokenize parses the given tokfiles and prints them back out, the closest
// equivalent this module has to the teacher's scanner-backed `tokenize`
// command given the lexer is out of scope (spec §1).
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	syms := symtab.New()
	compiler.Bootstrap(syms)

	toks, err := tokfile.ParseFiles(args, syms)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	tokfile.Dump(stdio.Stdout, toks, syms)
	return nil
}

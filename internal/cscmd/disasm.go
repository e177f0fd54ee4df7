package cscmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/scriptlang/cscompiler/emitter"
)

// Disasm compiles the given tokfiles and prints the resulting bytecode
// (spec §4.1/§4.2), one instruction per line.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	opts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	em, _, diags, err := compileFiles(opts, args)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if printDiags(stdio.Stderr, diags) {
		return fmt.Errorf("disasm: errors reported")
	}
	return emitter.Disassemble(stdio.Stdout, em.Code)
}

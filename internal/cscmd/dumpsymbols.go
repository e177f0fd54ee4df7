package cscmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/scriptlang/cscompiler/token"
)

// DumpSymbols compiles the given tokfiles and lists every symbol interned
// beyond the predeclared set (spec §3/§4.3), an introspection aid for
// inspecting what PreAnalyze/Main actually declared.
func (c *Cmd) DumpSymbols(ctx context.Context, stdio mainer.Stdio, args []string) error {
	opts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	_, syms, diags, err := compileFiles(opts, args)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if printDiags(stdio.Stderr, diags) {
		return fmt.Errorf("dump-symbols: errors reported")
	}

	for sym := token.MaxPredefined + 1; int(sym) < syms.Len(); sym++ {
		entry, ok := syms.Get(sym)
		if !ok {
			continue
		}
		fmt.Fprintf(stdio.Stdout, "%4d  %-30s kind=%d vartype=%s\n",
			sym, entry.Name, entry.Kind, syms.GetName(entry.Vartype))
	}
	return nil
}

package cscmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Compile runs both phases over the given tokfiles and reports diagnostics,
// staying silent on success (spec §2).
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	opts, err := c.loadOptions()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	_, _, diags, err := compileFiles(opts, args)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if printDiags(stdio.Stderr, diags) {
		return fmt.Errorf("compile: errors reported")
	}
	return nil
}

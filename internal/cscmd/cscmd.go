// Package cscmd implements the cscompile driver: argument parsing and
// subcommand dispatch, structured exactly like the teacher's
// cmd/nenuphar + internal/maincmd split (a thin cmd/ main plus the actual
// logic here so it stays testable without exec'ing a binary).
package cscmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "cscompile"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <tokfile>...
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <tokfile>...
       %[1]s -h|--help
       %[1]s -v|--version

Core of a two-phase compiler for a statically-typed C-like scripting
language, driven from a textual stand-in for the scanner's token stream
(see tokfile) since the lexer itself is out of scope for this module.

The <command> can be one of:
       preanalyze                Run PreAnalyze only and report headers
                                  collected plus any diagnostics.
       compile                   Run both phases and report diagnostics
                                  (silent on success).
       disasm                    Compile and print the resulting bytecode.
       tokenize                  Parse a tokfile and print it back out.
       dump-symbols               Compile and list every symbol interned
                                  beyond the predeclared set.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --config <path>           YAML file overlaying option env vars
                                  (spec §6 NOIMPORTOVERRIDE/OLDSTRINGS/
                                  EXPORTALL).

More information on the cscompiler module:
       https://github.com/scriptlang/cscompiler
`, binName)
)

// Cmd is the CLI entry point, parsed by mainer.Parser the way the teacher's
// maincmd.Cmd is.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	Config  string `flag:"config"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string)        { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: at least one tokfile must be provided", cmdName)
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// buildCmds mirrors the teacher's reflection-based dispatch: any exported
// method shaped like (context.Context, mainer.Stdio, []string) error is a
// command, named by its lowercased method name.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		name := strings.ToLower(m.Name)
		name = strings.ReplaceAll(name, "symbols", "-symbols") // DumpSymbols -> dump-symbols
		cmds[name] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

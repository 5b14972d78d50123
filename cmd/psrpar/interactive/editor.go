// Package interactive provides the line editor behind psrpar edit.
package interactive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/parfile"
)

// Editor edits one parameter file in memory.
type Editor struct {
	pf     *parfile.Parfile
	path   string
	parser *parfile.Parser
	writer *parfile.Writer

	dirty        bool
	warnedUnsave bool
}

// New returns an editor for pf, which was read from path.
func New(pf *parfile.Parfile, path string, types *parfile.TypeTable, writer *parfile.Writer) *Editor {
	if writer == nil {
		writer = parfile.NewWriter()
	}
	return &Editor{
		pf:     pf,
		path:   path,
		parser: &parfile.Parser{Types: types},
		writer: writer,
	}
}

// Dirty reports whether there are unsaved changes.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Run starts the interactive command loop. It returns when the user quits,
// input ends, or ctx is cancelled.
func (e *Editor) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("%s> ", filepath.Base(e.path)),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	e.printHelp(out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			if e.dirty {
				fmt.Fprintln(out, "Unsaved changes discarded.")
			}
			return nil
		}

		if e.Execute(line, out) {
			return nil
		}
	}
}

// Execute runs one command line, writing its output to w. It returns true
// when the editor should exit.
func (e *Editor) Execute(line string, w io.Writer) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	if cmd != "quit" && cmd != "q" && cmd != "exit" {
		e.warnedUnsave = false
	}

	switch cmd {
	case "help", "?":
		e.printHelp(w)

	case "list", "ls", "l":
		e.cmdList(args, w)

	case "get", "g":
		e.cmdGet(args, w)

	case "set", "s":
		e.cmdSet(strings.TrimSpace(input[len(parts[0]):]), w)

	case "fit", "f":
		e.cmdFit(args, w)

	case "del", "rm":
		e.cmdDelete(args, w)

	case "check", "c":
		e.cmdCheck(w)

	case "write", "w":
		e.cmdWrite(args, w)

	case "show", "p":
		fmt.Fprint(w, e.pf.String())

	case "quit", "q", "exit":
		if e.dirty && !e.warnedUnsave {
			e.warnedUnsave = true
			fmt.Fprintln(w, "Unsaved changes. Use 'write' to save or 'quit' again to discard.")
			return false
		}
		return true

	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (e *Editor) printHelp(w io.Writer) {
	fmt.Fprintln(w, `Commands:
  list [prefix]                    List parameters
  get <name>                       Show one parameter
  set <name> <value> [fit] [unc]   Add or replace a parameter line
  fit <name> 0|1                   Change the fit flag
  del <name>                       Remove a parameter
  check                            Run consistency checks
  show                             Print the file as it would be written
  write [path]                     Save (default: the file being edited)
  quit                             Exit`)
}

func (e *Editor) cmdList(args []string, w io.Writer) {
	prefix := ""
	if len(args) > 0 {
		prefix = strings.ToUpper(args[0])
	}
	for _, p := range e.pf.Params() {
		if prefix != "" && !strings.HasPrefix(strings.ToUpper(p.Name), prefix) {
			continue
		}
		fmt.Fprintln(w, formatParam(p))
	}
	if prefix == "" {
		for _, j := range e.pf.Jumps() {
			fmt.Fprintf(w, "%-15s %s %s = %s\n", j.Name, j.Selector, strings.Join(j.Args, " "), j.Value)
		}
	}
}

func formatParam(p *parfile.Parameter) string {
	s := fmt.Sprintf("%-15s %s", p.Name, p.Value)
	if p.Fit != nil {
		if *p.Fit {
			s += " (fit)"
		} else {
			s += " (fixed)"
		}
	}
	if p.Uncertainty != nil {
		s += fmt.Sprintf(" +/- %g", *p.Uncertainty)
	}
	return s
}

func (e *Editor) cmdGet(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: get <name>")
		return
	}
	p, ok := e.pf.Get(args[0])
	if !ok {
		fmt.Fprintf(w, "%s is not set\n", args[0])
		return
	}
	fmt.Fprintln(w, formatParam(p))
	if p.Comment != "" {
		fmt.Fprintf(w, "  comment: %s\n", p.Comment)
	}
}

// cmdSet reads the rest of the line as a parameter line, so values follow
// the same rules as a file.
func (e *Editor) cmdSet(rest string, w io.Writer) {
	if rest == "" {
		fmt.Fprintln(w, "Usage: set <name> <value> [fit] [uncertainty]")
		return
	}

	parsed, diags, err := e.parser.ParseString(rest + "\n")
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if errs := diags.Errors(); len(errs) > 0 {
		fmt.Fprintf(w, "Error: %s\n", diag.Detail(errs[0]))
		return
	}

	for _, entry := range parsed.Entries {
		switch entry.Kind() {
		case parfile.EntryParam:
			_, existed := e.pf.Get(entry.Param.Name)
			p := e.pf.Set(*entry.Param)
			if existed {
				fmt.Fprintf(w, "Replaced %s\n", formatParam(p))
			} else {
				fmt.Fprintf(w, "Added %s\n", formatParam(p))
			}
		case parfile.EntryJump:
			e.pf.Entries = append(e.pf.Entries, entry)
			fmt.Fprintf(w, "Added %s %s\n", entry.Jump.Name, strings.Join(entry.Jump.Args, " "))
		default:
			continue
		}
		e.dirty = true
	}
}

func (e *Editor) cmdFit(args []string, w io.Writer) {
	if len(args) != 2 || (args[1] != "0" && args[1] != "1") {
		fmt.Fprintln(w, "Usage: fit <name> 0|1")
		return
	}
	p, ok := e.pf.Get(args[0])
	if !ok {
		fmt.Fprintf(w, "%s is not set\n", args[0])
		return
	}
	if !p.Value.Type.NumericClass() {
		fmt.Fprintf(w, "Error: %s holds a %s value and cannot be fitted\n", p.Name, p.Value.Type)
		return
	}
	p.Fit = parfile.Bool(args[1] == "1")
	e.dirty = true
	fmt.Fprintln(w, formatParam(p))
}

func (e *Editor) cmdDelete(args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: del <name>")
		return
	}
	if !e.pf.Delete(args[0]) {
		fmt.Fprintf(w, "%s is not set\n", args[0])
		return
	}
	e.dirty = true
	fmt.Fprintf(w, "Removed %s\n", args[0])
}

func (e *Editor) cmdCheck(w io.Writer) {
	diags := parfile.Check(e.pf)
	if len(diags) == 0 {
		fmt.Fprintln(w, "OK")
		return
	}
	for _, d := range diags {
		fmt.Fprintf(w, "  WARNING %s: %s\n", d.Kind, d.Message)
	}
}

func (e *Editor) cmdWrite(args []string, w io.Writer) {
	target := e.path
	if len(args) > 0 {
		target = args[0]
	}

	var sb strings.Builder
	if err := e.writer.Write(&sb, e.pf); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if err := os.WriteFile(target, []byte(sb.String()), 0644); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	e.dirty = false
	fmt.Fprintf(w, "Wrote %d parameters to %s\n", e.pf.Len(), target)
}

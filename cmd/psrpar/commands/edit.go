package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/psrutils/psrutils-go/cmd/psrpar/interactive"
	"github.com/psrutils/psrutils-go/internal/config"
)

// RunEdit opens a parameter file in the interactive editor.
func RunEdit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: exactly one file required")
		fmt.Fprintln(stderr, "\nUsage: psrpar edit [options] <file>")
		return exitCommandError
	}
	path := fs.Arg(0)

	sess, err := newSession(&flags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	pf, diags, err := sess.parse(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(diags) > 0 {
		fmt.Fprintf(stdout, "%s: %d problems\n", path, len(diags))
		printDiagnostics(stdout, diags)
	}

	if !stdinIsTerminal() {
		fmt.Fprintln(stderr, "Error: edit needs an interactive terminal")
		return exitCommandError
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	editor := interactive.New(pf, path, sess.types, sess.cfg.ParWriter())
	if err := editor.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if editor.Dirty() {
		sess.logger.Warn("exited with unsaved changes", "file", path)
	}
	return exitSuccess
}

// stdinIsTerminal reports whether edit can run.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

package commands

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/psrutils/psrutils-go/internal/config"
)

// FormatOptions configures the format command.
type FormatOptions struct {
	Output  string
	InPlace bool
	Flags   config.Flags
	File    string
}

// RunFormat rewrites a parameter file with aligned columns. Lines that
// could not be parsed are written back unchanged.
func RunFormat(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFormatArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printFormatUsage(stderr)
		return exitCommandError
	}
	if opts.InPlace && opts.Output != "" {
		fmt.Fprintln(stderr, "Error: -o and -w are mutually exclusive")
		return exitCommandError
	}

	sess, err := newSession(&opts.Flags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	pf, diags, err := sess.parse(opts.File)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(diags) > 0 {
		fmt.Fprintf(stderr, "%s: %d problems, affected lines kept as written\n", opts.File, len(diags))
		printDiagnostics(stderr, diags)
	}

	var buf bytes.Buffer
	if err := sess.cfg.ParWriter().Write(&buf, pf); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	target := opts.Output
	if opts.InPlace {
		target = opts.File
	}
	if target == "" {
		stdout.Write(buf.Bytes())
		return exitSuccess
	}
	if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	sess.logger.Info("wrote parameter file", "file", target, "params", pf.Len())
	return exitSuccess
}

func parseFormatArgs(args []string) (FormatOptions, error) {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := FormatOptions{}

	fs.StringVar(&opts.Output, "o", "", "Output file (default: stdout)")
	fs.BoolVar(&opts.InPlace, "w", false, "Rewrite the input file")
	opts.Flags.Register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func printFormatUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrpar format [options] <file>

Options:
  -o <file>   Output file (default: stdout)
  -w          Rewrite the input file

Examples:
  psrpar format J0437-4715.par
  psrpar format -w J0437-4715.par`)
}

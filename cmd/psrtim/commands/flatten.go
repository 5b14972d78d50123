package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/psrutils/psrutils-go/pkg/timfile"
)

// FlattenOptions configures the flatten command.
type FlattenOptions struct {
	Read   readOptions
	Output string
	File   string
}

// RunFlatten reads a file with its includes and writes the TOAs as one file.
func RunFlatten(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlattenArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printFlattenUsage(stderr)
		return exitCommandError
	}

	sess, err := newSession(opts.Read, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	res, err := sess.read(opts.File, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	w, closeOut, err := openOutput(opts.Output, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := timfile.Write(w, res.TOAs); err != nil {
		closeOut()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := closeOut(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.Output != "" {
		fmt.Fprintf(stdout, "Wrote %d TOAs to %s\n", len(res.TOAs), opts.Output)
	}
	return exitSuccess
}

func parseFlattenArgs(args []string) (FlattenOptions, error) {
	fs := flag.NewFlagSet("flatten", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := FlattenOptions{}

	fs.StringVar(&opts.Output, "o", "", "Output file (default: stdout)")
	opts.Read.register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func printFlattenUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrtim flatten [options] <file>

Resolves INCLUDE directives and writes every TOA to a single file.

Options:
  -o <file>    Output file (default: stdout)
  -commented   Keep TOAs commented out with C

Examples:
  psrtim flatten -o all.tim J0437-4715.tim`)
}

package commands

import (
	"flag"
	"fmt"
	"io"
)

// CheckOptions configures the check command.
type CheckOptions struct {
	Read   readOptions
	Strict bool
	Files  []string
}

// RunCheck reads each file and fails when a line was skipped.
func RunCheck(args []string, stdout, stderr io.Writer) int {
	opts, err := parseCheckArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printCheckUsage(stderr)
		return exitCommandError
	}

	sess, err := newSession(opts.Read, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	// Diagnostics are printed here, per file.
	sess.opts.Quiet = true

	failed := false
	for _, path := range opts.Files {
		res, err := sess.read(path, stderr)
		if err != nil {
			fmt.Fprintf(stdout, "%s: FAILED\n  ERROR %v\n", path, err)
			failed = true
			continue
		}

		errs := len(res.Diagnostics.Errors())
		warns := len(res.Diagnostics.Warnings())
		if opts.Strict {
			errs, warns = errs+warns, 0
		}
		switch {
		case errs > 0:
			fmt.Fprintf(stdout, "%s: FAILED (%d errors, %d warnings)\n", path, errs, warns)
			failed = true
		case warns > 0:
			fmt.Fprintf(stdout, "%s: OK, %d TOAs (with %d warnings)\n", path, len(res.TOAs), warns)
		default:
			fmt.Fprintf(stdout, "%s: OK, %d TOAs\n", path, len(res.TOAs))
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintf(stdout, "  %s\n", d.Error())
		}
	}

	if failed {
		return exitValidation
	}
	return exitSuccess
}

func parseCheckArgs(args []string) (CheckOptions, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := CheckOptions{}

	fs.BoolVar(&opts.Strict, "strict", false, "Treat warnings as errors")
	opts.Read.register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrtim check [options] <files...>

Reads each file with its includes and reports skipped lines. Exits with
status 2 when a file has errors or cannot be read.

Options:
  -strict     Treat warnings as errors

Examples:
  psrtim check J0437-4715.tim
  psrtim check -strict *.tim`)
}

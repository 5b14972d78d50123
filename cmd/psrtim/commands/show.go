package commands

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/psrutils/psrutils-go/pkg/timfile"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	Read   readOptions
	Limit  int
	Source bool
	File   string
}

// RunShow runs the show command.
func RunShow(args []string, stdout, stderr io.Writer) int {
	opts, err := parseShowArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printShowUsage(stderr)
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

	printTOAs(stdout, res.TOAs, opts)
	return exitSuccess
}

func printTOAs(w io.Writer, toas []timfile.TOA, opts ShowOptions) {
	shown := toas
	if opts.Limit > 0 && len(shown) > opts.Limit {
		shown = shown[:opts.Limit]
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "TAG\tFREQ\tMJD\tUNC\tOBS\tFLAGS"
	if opts.Source {
		header += "\tSOURCE"
	}
	fmt.Fprintln(tw, header)
	for _, t := range shown {
		tag := t.Tag
		if t.Commented {
			tag = "C " + tag
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\t%g\t%s\t%s", tag, t.Frequency, t.MJD, t.Uncertainty, t.Observatory, flagsLabel(t.Flags))
		if opts.Source {
			fmt.Fprintf(tw, "\t%s:%d", t.SourceFile, t.Line)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	if len(shown) < len(toas) {
		fmt.Fprintf(w, "... %d more\n", len(toas)-len(shown))
	}
}

func flagsLabel(flags []timfile.Flag) string {
	if len(flags) == 0 {
		return "-"
	}
	parts := make([]string, len(flags))
	for i, f := range flags {
		parts[i] = "-" + f.Key + " " + f.Value
	}
	return strings.Join(parts, " ")
}

func parseShowArgs(args []string) (ShowOptions, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ShowOptions{}

	fs.IntVar(&opts.Limit, "n", 0, "Show at most n TOAs (0 shows all)")
	fs.BoolVar(&opts.Source, "source", false, "Show the file and line of each TOA")
	opts.Read.register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.Limit < 0 {
		return opts, fmt.Errorf("-n must not be negative")
	}
	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrtim show [options] <file>

Options:
  -n          Show at most n TOAs
  -source     Show the file and line of each TOA
  -commented  Include TOAs commented out with C
  -q          Do not report skipped lines

Examples:
  psrtim show J0437-4715.tim
  psrtim show -n 20 -source J0437-4715.tim`)
}

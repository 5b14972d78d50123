package commands

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/psrutils/psrutils-go/pkg/timfile"
)

// ExportOptions configures the export command.
type ExportOptions struct {
	Read   readOptions
	Format string
	Output string
	File   string
}

// RunExport writes the TOAs of a file as JSON lines, CSV or a CBOR stream.
func RunExport(args []string, stdout, stderr io.Writer) int {
	opts, err := parseExportArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printExportUsage(stderr)
		return exitCommandError
	}

	var export func(io.Writer, []timfile.TOA) error
	switch opts.Format {
	case "jsonl":
		export = exportJSONL
	case "csv":
		export = exportCSV
	case "cbor":
		export = exportCBOR
	default:
		fmt.Fprintf(stderr, "Error: unknown format: %s (supported: jsonl, csv, cbor)\n", opts.Format)
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
	if err := export(w, res.TOAs); err != nil {
		closeOut()
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := closeOut(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func exportJSONL(w io.Writer, toas []timfile.TOA) error {
	enc := json.NewEncoder(w)
	for i := range toas {
		if err := enc.Encode(&toas[i]); err != nil {
			return fmt.Errorf("failed to encode TOA: %w", err)
		}
	}
	return nil
}

func exportCSV(w io.Writer, toas []timfile.TOA) error {
	cw := csv.NewWriter(w)
	header := []string{"tag", "frequency", "mjd", "uncertainty", "observatory", "flags", "source_file", "line", "commented"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range toas {
		flags := ""
		if len(t.Flags) > 0 {
			flags = flagsLabel(t.Flags)
		}
		record := []string{
			t.Tag,
			strconv.FormatFloat(t.Frequency, 'f', -1, 64),
			t.MJD.String(),
			strconv.FormatFloat(t.Uncertainty, 'f', -1, 64),
			t.Observatory,
			flags,
			t.SourceFile,
			strconv.Itoa(t.Line),
			strconv.FormatBool(t.Commented),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportCBOR(w io.Writer, toas []timfile.TOA) error {
	enc := timfile.NewCBOREncoder(w)
	for i := range toas {
		if err := enc.Encode(&toas[i]); err != nil {
			return fmt.Errorf("failed to encode TOA: %w", err)
		}
	}
	return nil
}

func parseExportArgs(args []string) (ExportOptions, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ExportOptions{}

	fs.StringVar(&opts.Format, "format", "jsonl", "Output format: jsonl, csv, cbor")
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

func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrtim export [options] <file>

Options:
  -format <fmt>  jsonl, csv or cbor (default: jsonl)
  -o <file>      Output file (default: stdout)
  -commented     Include TOAs commented out with C

Examples:
  psrtim export -format csv -o toas.csv J0437-4715.tim
  psrtim export -format cbor -o toas.cbor J0437-4715.tim`)
}

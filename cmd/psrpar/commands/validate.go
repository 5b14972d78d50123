package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/psrutils/psrutils-go/internal/config"
	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/parfile"
)

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	Strict  bool
	JSON    bool
	NoCheck bool
	Flags   config.Flags
	Files   []string
}

// ValidationOutput represents the validation result for a file.
type ValidationOutput struct {
	Valid    bool          `json:"valid"`
	Pulsar   string        `json:"pulsar,omitempty"`
	Params   int           `json:"params"`
	Jumps    int           `json:"jumps"`
	Errors   []IssueOutput `json:"errors,omitempty"`
	Warnings []IssueOutput `json:"warnings,omitempty"`
}

// IssueOutput represents one diagnostic.
type IssueOutput struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Text    string `json:"text,omitempty"`
}

// RunValidate runs the validate command.
func RunValidate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseValidateArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printValidateUsage(stderr)
		return exitCommandError
	}

	sess, err := newSession(&opts.Flags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	hasErrors := false
	results := make(map[string]*ValidationOutput)

	for _, file := range opts.Files {
		result := validateFile(sess, file, opts)
		results[file] = result

		if !result.Valid {
			hasErrors = true
		}

		if !opts.JSON {
			printValidationResult(stdout, file, result)
		}
	}

	if opts.JSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(stdout, string(output))
	}

	if hasErrors {
		return exitValidation
	}
	return exitSuccess
}

func validateFile(sess *session, path string, opts ValidateOptions) *ValidationOutput {
	output := &ValidationOutput{Valid: true}

	pf, diags, err := sess.parse(path)
	if err != nil {
		output.Valid = false
		output.Errors = append(output.Errors, IssueOutput{Code: "READ", Message: err.Error()})
		return output
	}

	output.Pulsar = pf.PulsarName()
	output.Params = pf.Len()
	output.Jumps = len(pf.Jumps())

	if !opts.NoCheck {
		diags = append(diags, parfile.Check(pf)...)
	}

	for _, d := range diags {
		issue := IssueOutput{Code: d.Kind.String(), Message: d.Message, Line: d.Line, Text: d.Text}
		if d.Severity == diag.SeverityError || opts.Strict {
			output.Errors = append(output.Errors, issue)
		} else {
			output.Warnings = append(output.Warnings, issue)
		}
	}
	output.Valid = len(output.Errors) == 0
	return output
}

func printValidationResult(w io.Writer, file string, result *ValidationOutput) {
	switch {
	case result.Valid && len(result.Warnings) == 0:
		fmt.Fprintf(w, "%s: OK\n", file)
	case result.Valid:
		fmt.Fprintf(w, "%s: OK (with %d warnings)\n", file, len(result.Warnings))
	default:
		fmt.Fprintf(w, "%s: FAILED (%d errors, %d warnings)\n", file, len(result.Errors), len(result.Warnings))
	}

	for _, e := range result.Errors {
		printIssue(w, "ERROR", e)
	}
	for _, warn := range result.Warnings {
		printIssue(w, "WARNING", warn)
	}
}

func printIssue(w io.Writer, label string, issue IssueOutput) {
	if issue.Line > 0 {
		fmt.Fprintf(w, "  %s [line %d] %s: %s\n", label, issue.Line, issue.Code, issue.Message)
	} else {
		fmt.Fprintf(w, "  %s %s: %s\n", label, issue.Code, issue.Message)
	}
}

func parseValidateArgs(args []string) (ValidateOptions, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ValidateOptions{}

	fs.BoolVar(&opts.Strict, "strict", false, "Treat warnings as errors")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVar(&opts.NoCheck, "no-check", false, "Skip the consistency checks")
	opts.Flags.Register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Files = fs.Args()
	return opts, nil
}

func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrpar validate [options] <files...>

Options:
  -strict      Treat warnings as errors
  -json        Output results as JSON
  -no-check    Only report problems found while parsing
  -config      Configuration file
  -log-level   Log level: debug, info, warn, error
  -trace       Write a binary read trace

Examples:
  psrpar validate J0437-4715.par
  psrpar validate -strict -json *.par`)
}

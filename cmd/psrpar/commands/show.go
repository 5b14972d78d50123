package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/psrutils/psrutils-go/internal/config"
	"github.com/psrutils/psrutils-go/pkg/parfile"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	Format     string
	FittedOnly bool
	Flags      config.Flags
	File       string
}

// ParamOutput is the structured form of one parameter line.
type ParamOutput struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Value       string   `json:"value" yaml:"value"`
	Fit         *bool    `json:"fit,omitempty" yaml:"fit,omitempty"`
	Uncertainty *float64 `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Comment     string   `json:"comment,omitempty" yaml:"comment,omitempty"`
	Line        int      `json:"line" yaml:"line"`
}

// JumpOutput is the structured form of one selector line.
type JumpOutput struct {
	Name        string   `json:"name" yaml:"name"`
	Selector    string   `json:"selector" yaml:"selector"`
	Args        []string `json:"args" yaml:"args"`
	Value       string   `json:"value" yaml:"value"`
	Fit         *bool    `json:"fit,omitempty" yaml:"fit,omitempty"`
	Uncertainty *float64 `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Line        int      `json:"line" yaml:"line"`
}

// ParfileOutput is the structured form of a parameter file.
type ParfileOutput struct {
	Pulsar string        `json:"pulsar,omitempty" yaml:"pulsar,omitempty"`
	Params []ParamOutput `json:"params" yaml:"params"`
	Jumps  []JumpOutput  `json:"jumps,omitempty" yaml:"jumps,omitempty"`
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
		fmt.Fprintf(stderr, "%s: %d problems\n", opts.File, len(diags))
		printDiagnostics(stderr, diags)
	}

	out := buildOutput(pf, sess.types, opts.FittedOnly)

	switch opts.Format {
	case "text":
		printText(stdout, out)
	case "json":
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		fmt.Fprintln(stdout, string(data))
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		enc.Close()
	default:
		fmt.Fprintf(stderr, "Error: unknown format: %s (supported: text, json, yaml)\n", opts.Format)
		return exitCommandError
	}

	return exitSuccess
}

func buildOutput(pf *parfile.Parfile, types *parfile.TypeTable, fittedOnly bool) ParfileOutput {
	out := ParfileOutput{Pulsar: pf.PulsarName(), Params: []ParamOutput{}}
	for _, p := range pf.Params() {
		if fittedOnly && !p.Fitted() {
			continue
		}
		out.Params = append(out.Params, ParamOutput{
			Name:        p.Name,
			Type:        types.TypeOf(p.Name).String(),
			Value:       p.Value.String(),
			Fit:         p.Fit,
			Uncertainty: p.Uncertainty,
			Comment:     p.Comment,
			Line:        p.Line,
		})
	}
	for _, j := range pf.Jumps() {
		if fittedOnly && (j.Fit == nil || !*j.Fit) {
			continue
		}
		out.Jumps = append(out.Jumps, JumpOutput{
			Name:        j.Name,
			Selector:    selectorLabel(j),
			Args:        j.Args,
			Value:       j.Value.String(),
			Fit:         j.Fit,
			Uncertainty: j.Uncertainty,
			Line:        j.Line,
		})
	}
	return out
}

func selectorLabel(j *parfile.Jump) string {
	if j.Selector == parfile.SelectFlag {
		return "-" + j.Key
	}
	return j.Selector.String()
}

func printText(w io.Writer, out ParfileOutput) {
	if out.Pulsar != "" {
		fmt.Fprintf(w, "Pulsar: %s\n\n", out.Pulsar)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tVALUE\tFIT\tUNCERTAINTY")
	for _, p := range out.Params {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.Type, p.Value, fitLabel(p.Fit), uncLabel(p.Uncertainty))
	}
	tw.Flush()

	if len(out.Jumps) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSELECTOR\tVALUE\tFIT\tUNCERTAINTY")
		for _, j := range out.Jumps {
			sel := strings.TrimSpace(j.Selector + " " + strings.Join(j.Args, " "))
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Name, sel, j.Value, fitLabel(j.Fit), uncLabel(j.Uncertainty))
		}
		tw.Flush()
	}
}

func fitLabel(fit *bool) string {
	switch {
	case fit == nil:
		return "-"
	case *fit:
		return "1"
	default:
		return "0"
	}
}

func uncLabel(unc *float64) string {
	if unc == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *unc)
}

func parseShowArgs(args []string) (ShowOptions, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := ShowOptions{}

	fs.StringVar(&opts.Format, "format", "text", "Output format: text, json, yaml")
	fs.BoolVar(&opts.FittedOnly, "fitted", false, "Only show fitted parameters")
	opts.Flags.Register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrpar show [options] <file>

Options:
  -format   Output format: text, json, yaml (default: text)
  -fitted   Only show fitted parameters

Examples:
  psrpar show J0437-4715.par
  psrpar show -format json -fitted J0437-4715.par`)
}

package commands

import (
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/mjd"
	"github.com/psrutils/psrutils-go/pkg/parfile"
	"github.com/psrutils/psrutils-go/pkg/timfile"
)

// StatsOptions configures the stats command.
type StatsOptions struct {
	Read    readOptions
	ParFile string
	Flag    string
	File    string
}

// Stats summarises a set of TOAs.
type Stats struct {
	Count     int
	Commented int

	First, Last mjd.MJD

	MinFreq, MaxFreq float64
	MinUnc, MaxUnc   float64

	Observatories map[string]int
	Files         map[string]int

	// FlagValues counts the values of one flag key; "" counts TOAs
	// without it.
	FlagValues map[string]int

	// Jumps counts the TOAs each selector line of a parameter file
	// applies to, in file order.
	Jumps []JumpCount
}

// JumpCount is the number of TOAs one jump line selects.
type JumpCount struct {
	Label string
	Count int
}

// ComputeStats summarises toas. flagKey selects the flag whose values are
// counted; empty skips the count. pf may be nil.
func ComputeStats(toas []timfile.TOA, flagKey string, pf *parfile.Parfile) *Stats {
	s := &Stats{
		Observatories: make(map[string]int),
		Files:         make(map[string]int),
	}
	if flagKey != "" {
		s.FlagValues = make(map[string]int)
	}

	for i := range toas {
		t := &toas[i]
		s.Count++
		if t.Commented {
			s.Commented++
		}
		if i == 0 {
			s.First, s.Last = t.MJD, t.MJD
			s.MinFreq, s.MaxFreq = t.Frequency, t.Frequency
			s.MinUnc, s.MaxUnc = t.Uncertainty, t.Uncertainty
		} else {
			if t.MJD.Compare(s.First) < 0 {
				s.First = t.MJD
			}
			if t.MJD.Compare(s.Last) > 0 {
				s.Last = t.MJD
			}
			s.MinFreq = min(s.MinFreq, t.Frequency)
			s.MaxFreq = max(s.MaxFreq, t.Frequency)
			s.MinUnc = min(s.MinUnc, t.Uncertainty)
			s.MaxUnc = max(s.MaxUnc, t.Uncertainty)
		}
		s.Observatories[t.Observatory]++
		s.Files[t.SourceFile]++
		if flagKey != "" {
			v, _ := t.Flag(flagKey)
			s.FlagValues[v]++
		}
	}

	if pf != nil {
		for _, j := range pf.Jumps() {
			jc := JumpCount{Label: jumpLabel(j)}
			for i := range toas {
				if j.Selects(target(&toas[i])) {
					jc.Count++
				}
			}
			s.Jumps = append(s.Jumps, jc)
		}
	}
	return s
}

func target(t *timfile.TOA) parfile.Target {
	return parfile.Target{
		MJD:         t.MJD.Float64(),
		Frequency:   t.Frequency,
		Observatory: t.Observatory,
		Tag:         t.Tag,
		Flag:        t.Flag,
	}
}

func jumpLabel(j *parfile.Jump) string {
	sel := j.Selector.String()
	if j.Selector == parfile.SelectFlag {
		sel = "-" + j.Key
	}
	return fmt.Sprintf("%s %s %s (line %d)", j.Name, sel, strings.Join(j.Args, " "), j.Line)
}

// RunStats runs the stats command.
func RunStats(args []string, stdout, stderr io.Writer) int {
	opts, err := parseStatsArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: no file specified")
		printStatsUsage(stderr)
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

	var pf *parfile.Parfile
	if opts.ParFile != "" {
		types, err := sess.cfg.Types()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		p := &parfile.Parser{Types: types}
		pf, _, err = p.ParseFile(opts.ParFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
	}

	printStats(stdout, ComputeStats(res.TOAs, opts.Flag, pf), opts.Flag)
	return exitSuccess
}

func printStats(w io.Writer, s *Stats, flagKey string) {
	fmt.Fprintln(w, "=== TOA Statistics ===")
	fmt.Fprintf(w, "TOAs: %d", s.Count)
	if s.Commented > 0 {
		fmt.Fprintf(w, " (%d commented)", s.Commented)
	}
	fmt.Fprintln(w)
	if s.Count == 0 {
		return
	}

	fmt.Fprintf(w, "MJD:  %s - %s (%.1f days)\n", s.First, s.Last, s.Last.Sub(s.First)/mjd.SecondsPerDay)
	fmt.Fprintf(w, "Freq: %g - %g MHz\n", s.MinFreq, s.MaxFreq)
	fmt.Fprintf(w, "Unc:  %g - %g us\n", s.MinUnc, s.MaxUnc)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Observatories:")
	printCounts(w, s.Observatories)

	if len(s.Files) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Files:")
		printCounts(w, s.Files)
	}

	if s.FlagValues != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Flag -%s:\n", flagKey)
		counts := make(map[string]int, len(s.FlagValues))
		for v, n := range s.FlagValues {
			if v == "" {
				v = "(none)"
			}
			counts[v] += n
		}
		printCounts(w, counts)
	}

	if len(s.Jumps) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Jumps:")
		for _, j := range s.Jumps {
			fmt.Fprintf(w, "  %-40s %d\n", j.Label, j.Count)
		}
	}
}

func printCounts(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-20s %d\n", k, counts[k])
	}
}

func parseStatsArgs(args []string) (StatsOptions, error) {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := StatsOptions{}

	fs.StringVar(&opts.ParFile, "par", "", "Count the TOAs each jump in this parameter file selects")
	fs.StringVar(&opts.Flag, "flag", "", "Count the values of this flag key")
	opts.Read.register(fs)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.Flag = strings.TrimPrefix(opts.Flag, "-")
	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func printStatsUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: psrtim stats [options] <file>

Options:
  -par <file>   Count the TOAs each jump in a parameter file selects
  -flag <key>   Count the values of a flag
  -commented    Include TOAs commented out with C

Examples:
  psrtim stats J0437-4715.tim
  psrtim stats -flag sys -par J0437-4715.par J0437-4715.tim`)
}

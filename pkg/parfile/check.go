package parfile

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

// Required lists the parameters every timing model needs.
var Required = []string{"PSR", "F0", "PEPOCH", "DM"}

// KnownValues lists the accepted values of enumerated string parameters.
var KnownValues = map[string][]string{
	"BINARY":    {"BT", "BTJ", "BTX", "DD", "DDK", "DDS", "DDH", "DDGR", "ELL1", "ELL1H", "ELL1K", "MSS", "T2"},
	"UNITS":     {"SI", "TCB", "TDB"},
	"TIMEEPH":   {"IF99", "FB90"},
	"T2CMETHOD": {"IAU2000B", "TEMPO"},
}

var glitchPrefixes = []string{"GLEP_", "GLPH_", "GLF0_", "GLF1_", "GLF2_", "GLF0D_", "GLTD_"}

// Check reports suspicious content as warnings. It is never run by Parse.
func Check(p *Parfile) diag.List {
	var l diag.List

	for _, name := range Required {
		if !p.Has(name) {
			l.AddWarning(diag.KindMissingParameter, "", 0, "", name+" is not set")
		}
	}

	for _, name := range []string{"F0", "PEPOCH"} {
		param, ok := p.Get(name)
		if !ok {
			continue
		}
		if v, ok := param.Float64(); ok && v <= 0 {
			l.AddWarning(diag.KindInvalidRecord, "", param.Line, "", fmt.Sprintf("%s must be positive, got %v", param.Name, v))
		}
	}

	if param, ok := p.Get("MODE"); ok && param.Value.Type == Integer && param.Value.Int != 0 && param.Value.Int != 1 {
		l.AddWarning(diag.KindUnknownValue, "", param.Line, "", fmt.Sprintf("MODE must be 0 or 1, got %d", param.Value.Int))
	}

	enums := make([]string, 0, len(KnownValues))
	for name := range KnownValues {
		enums = append(enums, name)
	}
	sort.Strings(enums)
	for _, name := range enums {
		param, ok := p.Get(name)
		if !ok {
			continue
		}
		got := strings.ToUpper(param.Value.String())
		known := false
		for _, v := range KnownValues[name] {
			if v == got {
				known = true
				break
			}
		}
		if !known {
			l.AddWarning(diag.KindUnknownValue, "", param.Line, "",
				fmt.Sprintf("%s %q is not one of %s", param.Name, param.Value.String(), strings.Join(KnownValues[name], ", ")))
		}
	}

	checkGlitches(p, &l)
	return l
}

// checkGlitches wants every glitch index to have an epoch, and indices to
// run 1..n without gaps.
func checkGlitches(p *Parfile, l *diag.List) {
	used := map[int]int{} // index -> first line
	for _, param := range p.Params() {
		upper := strings.ToUpper(param.Name)
		for _, prefix := range glitchPrefixes {
			rest, ok := strings.CutPrefix(upper, prefix)
			if !ok {
				continue
			}
			n, err := strconv.Atoi(rest)
			if err != nil || n < 1 {
				continue
			}
			if _, seen := used[n]; !seen {
				used[n] = param.Line
			}
		}
	}

	indices := make([]int, 0, len(used))
	for n := range used {
		indices = append(indices, n)
	}
	sort.Ints(indices)

	prev := 0
	for _, n := range indices {
		if !p.Has(fmt.Sprintf("GLEP_%d", n)) {
			l.AddWarning(diag.KindMissingParameter, "", used[n], "", fmt.Sprintf("glitch %d has no GLEP_%d", n, n))
		}
		if n != prev+1 {
			l.AddWarning(diag.KindInvalidRecord, "", used[n], "", fmt.Sprintf("glitch indices are not contiguous: %d follows %d", n, prev))
		}
		prev = n
	}
}

// Package diag defines the error taxonomy shared by the par and tim readers.
//
// Problems confined to a single line (a missing column, a value that does not
// parse, a duplicate parameter) are recorded as a [Diagnostic] and the read
// continues. Structural problems (an include that cannot be opened, an
// include cycle) abort the read and are returned as an error wrapping one of
// the sentinels below.
//
// Every Diagnostic unwraps to the sentinel for its [Kind], so callers can test
// either form with [errors.Is]:
//
//	par, diags, err := parfile.ParseFile("J0437-4715.par")
//	if err != nil {
//	    return err
//	}
//	for _, d := range diags {
//	    if errors.Is(d, diag.ErrDuplicateParameter) {
//	        fmt.Println("overwritten:", d.Line)
//	    }
//	}
package diag

// Package parfile reads and writes tempo2 parameter (.par) files.
//
// A parameter file is a sequence of lines of the form
//
//	NAME VALUE [FIT] [UNCERTAINTY] [COMMENT]
//
// where the type of VALUE depends on NAME (see TypeTable) and the optional
// columns are only recognized for numeric and coordinate values. Comments,
// blank lines and lines that fail to parse are kept in position, so writing
// a parsed file never drops content:
//
//	pf, diags, err := parfile.ParseFile("J0437-4715.par")
//	if err != nil {
//		return err
//	}
//	for _, d := range diags {
//		slog.Warn("par file", "problem", d)
//	}
//	f0, _ := pf.Get("F0")
//	f0.Value.Number *= 1.0000001
//	err = parfile.Write(os.Stdout, pf)
//
// JUMP lines and noise parameters with the same selector syntax (T2EFAC,
// ECORR, ...) are kept as Jump entries and may repeat.
package parfile

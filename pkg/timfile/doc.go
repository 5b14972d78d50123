// Package timfile reads and writes tempo2 TOA files.
//
// Each TOA line holds a tag, a frequency in MHz, an MJD, an uncertainty in
// microseconds and an observatory code, followed by -key value flags:
//
//	FORMAT 1
//	fake 1400.0 55000.123456789012 1.5 ao -sys AO
//	INCLUDE more.tim
//
// INCLUDE directives are expanded in place, relative to the directory of the
// including file. A file that includes itself, directly or through other
// files, aborts the read with an error wrapping diag.ErrCyclicInclude. A
// file included twice along different branches is read twice. An INCLUDE
// line that does not name exactly one path aborts the read with an error
// wrapping diag.ErrUnresolvedInclude.
//
// Malformed TOA lines do not abort a read; they are skipped and reported in
// Result.Diagnostics.
package timfile

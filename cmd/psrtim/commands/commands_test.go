package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/psrutils/psrutils-go/pkg/log"
	"github.com/psrutils/psrutils-go/pkg/parfile"
	"github.com/psrutils/psrutils-go/pkg/timfile"
)

const mainTim = `FORMAT 1
a1 1400.0 55000.5 1.0 ao -sys AO
INCLUDE sub/b.tim
a2 820 55010.5 2.5 gbt -sys GBT # late
`

const subTim = `b1 1400 55005.25 0.5 ao
C b2 1400 55006 0.5 ao
`

// writeTree writes files under one temporary directory and returns it.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func sampleTree(t *testing.T) string {
	t.Helper()
	dir := writeTree(t, map[string]string{"main.tim": mainTim, "sub/b.tim": subTim})
	return filepath.Join(dir, "main.tim")
}

func TestRunCheck_Valid(t *testing.T) {
	stdout := &bytes.Buffer{}
	path := sampleTree(t)

	exitCode := RunCheck([]string{path}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Errorf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	if !strings.Contains(stdout.String(), path+": OK, 3 TOAs\n") {
		t.Errorf("expected OK in output, got: %s", stdout.String())
	}
}

func TestRunCheck_MalformedLine(t *testing.T) {
	dir := writeTree(t, map[string]string{"bad.tim": "a 1400 55000 1 ao\nb fast 55001 1 ao\n"})
	stdout := &bytes.Buffer{}

	exitCode := RunCheck([]string{filepath.Join(dir, "bad.tim")}, stdout, &bytes.Buffer{})

	if exitCode != exitValidation {
		t.Errorf("expected exit code %d, got %d", exitValidation, exitCode)
	}
	output := stdout.String()
	if !strings.Contains(output, "FAILED (1 errors, 0 warnings)") {
		t.Errorf("expected failure summary, got: %s", output)
	}
	if !strings.Contains(output, "bad.tim:2:") {
		t.Errorf("expected located diagnostic, got: %s", output)
	}
}

func TestRunCheck_StrictWarnings(t *testing.T) {
	dir := writeTree(t, map[string]string{"w.tim": "TIME 0.5\na 1400 55000 1 ao\n"})
	path := filepath.Join(dir, "w.tim")

	stdout := &bytes.Buffer{}
	if code := RunCheck([]string{path}, stdout, &bytes.Buffer{}); code != exitSuccess {
		t.Errorf("warnings alone should pass, got %d", code)
	}
	if !strings.Contains(stdout.String(), "with 1 warnings") {
		t.Errorf("expected warning count, got: %s", stdout.String())
	}

	stdout.Reset()
	if code := RunCheck([]string{"-strict", path}, stdout, &bytes.Buffer{}); code != exitValidation {
		t.Errorf("expected exit code %d with -strict, got %d", exitValidation, code)
	}
}

func TestRunCheck_CyclicInclude(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.tim": "INCLUDE b.tim\n",
		"b.tim": "INCLUDE a.tim\n",
	})
	stdout := &bytes.Buffer{}

	exitCode := RunCheck([]string{filepath.Join(dir, "a.tim")}, stdout, &bytes.Buffer{})

	if exitCode != exitValidation {
		t.Errorf("expected exit code %d, got %d", exitValidation, exitCode)
	}
	if !strings.Contains(stdout.String(), "cyclic include") {
		t.Errorf("expected cycle error, got: %s", stdout.String())
	}
}

func TestRunCheck_NoFiles(t *testing.T) {
	stderr := &bytes.Buffer{}
	if code := RunCheck(nil, &bytes.Buffer{}, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "no files specified") {
		t.Errorf("expected error message, got: %s", stderr.String())
	}
}

func TestRunShow(t *testing.T) {
	stdout := &bytes.Buffer{}
	exitCode := RunShow([]string{"-source", sampleTree(t)}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	output := stdout.String()
	for _, want := range []string{"TAG", "SOURCE", "a1", "55005.25", "-sys GBT", "b.tim:1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
	if strings.Contains(output, "b2") {
		t.Errorf("commented TOA shown without -commented: %s", output)
	}
}

func TestRunShow_LimitAndCommented(t *testing.T) {
	stdout := &bytes.Buffer{}
	exitCode := RunShow([]string{"-n", "1", "-commented", sampleTree(t)}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	if !strings.Contains(stdout.String(), "... 3 more") {
		t.Errorf("expected truncation note, got: %s", stdout.String())
	}
}

func TestRunShow_ReportsSkippedLines(t *testing.T) {
	dir := writeTree(t, map[string]string{"bad.tim": "a 1400 55000 1 ao\nbroken\n"})
	path := filepath.Join(dir, "bad.tim")

	stderr := &bytes.Buffer{}
	RunShow([]string{path}, &bytes.Buffer{}, stderr)
	if !strings.Contains(stderr.String(), "1 lines skipped or suspicious") {
		t.Errorf("expected diagnostics on stderr, got: %s", stderr.String())
	}

	stderr.Reset()
	RunShow([]string{"-q", path}, &bytes.Buffer{}, stderr)
	if stderr.Len() != 0 {
		t.Errorf("expected no output with -q, got: %s", stderr.String())
	}
}

func TestRunShow_NegativeLimit(t *testing.T) {
	if code := RunShow([]string{"-n", "-1", "x.tim"}, &bytes.Buffer{}, &bytes.Buffer{}); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
}

func TestComputeStats(t *testing.T) {
	res, err := timfile.Read(sampleTree(t))
	if err != nil {
		t.Fatal(err)
	}
	pf, _, err := parfile.ParseString("JUMP -sys AO 0.1 1\nJUMP MJD 55004 55011 0.2\n")
	if err != nil {
		t.Fatal(err)
	}

	s := ComputeStats(res.TOAs, "sys", pf)

	if s.Count != 3 {
		t.Errorf("expected 3 TOAs, got %d", s.Count)
	}
	if s.First.String() != "55000.5" || s.Last.String() != "55010.5" {
		t.Errorf("unexpected span %s - %s", s.First, s.Last)
	}
	if s.MinFreq != 820 || s.MaxFreq != 1400 {
		t.Errorf("unexpected frequency range %g - %g", s.MinFreq, s.MaxFreq)
	}
	if s.MinUnc != 0.5 || s.MaxUnc != 2.5 {
		t.Errorf("unexpected uncertainty range %g - %g", s.MinUnc, s.MaxUnc)
	}
	if s.Observatories["ao"] != 2 || s.Observatories["gbt"] != 1 {
		t.Errorf("unexpected observatory counts %v", s.Observatories)
	}
	if len(s.Files) != 2 {
		t.Errorf("expected 2 files, got %v", s.Files)
	}
	if s.FlagValues["AO"] != 1 || s.FlagValues["GBT"] != 1 || s.FlagValues[""] != 1 {
		t.Errorf("unexpected flag counts %v", s.FlagValues)
	}

	if len(s.Jumps) != 2 {
		t.Fatalf("expected 2 jumps, got %d", len(s.Jumps))
	}
	if s.Jumps[0].Count != 1 || s.Jumps[0].Label != "JUMP -sys AO (line 1)" {
		t.Errorf("unexpected flag jump %+v", s.Jumps[0])
	}
	if s.Jumps[1].Count != 2 || s.Jumps[1].Label != "JUMP MJD 55004 55011 (line 2)" {
		t.Errorf("unexpected MJD jump %+v", s.Jumps[1])
	}
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, "", nil)
	if s.Count != 0 || s.FlagValues != nil || s.Jumps != nil {
		t.Errorf("unexpected stats for no TOAs: %+v", s)
	}

	stdout := &bytes.Buffer{}
	printStats(stdout, s, "")
	if stdout.String() != "=== TOA Statistics ===\nTOAs: 0\n" {
		t.Errorf("unexpected output: %q", stdout.String())
	}
}

func TestRunStats(t *testing.T) {
	path := sampleTree(t)
	par := filepath.Join(filepath.Dir(path), "p.par")
	if err := os.WriteFile(par, []byte("PSRJ J1\nJUMP TEL gbt 0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout := &bytes.Buffer{}
	exitCode := RunStats([]string{"-flag", "-sys", "-par", par, path}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	output := stdout.String()
	for _, want := range []string{
		"TOAs: 3\n",
		"MJD:  55000.5 - 55010.5 (10.0 days)",
		"Freq: 820 - 1400 MHz",
		"Flag -sys:",
		"(none)",
		"Files:",
		"JUMP TEL gbt (line 2)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestRunStats_MissingParFile(t *testing.T) {
	stderr := &bytes.Buffer{}
	code := RunStats([]string{"-par", "nope.par", sampleTree(t)}, &bytes.Buffer{}, stderr)
	if code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "nope.par") {
		t.Errorf("expected the file in the error, got: %s", stderr.String())
	}
}

func TestRunFlatten_Stdout(t *testing.T) {
	stdout := &bytes.Buffer{}
	exitCode := RunFlatten([]string{sampleTree(t)}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	want := "FORMAT 1\n" +
		"a1 1400 55000.5 1 ao -sys AO\n" +
		"b1 1400 55005.25 0.5 ao\n" +
		"a2 820 55010.5 2.5 gbt -sys GBT # late\n"
	if stdout.String() != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", stdout.String(), want)
	}
}

func TestRunFlatten_File(t *testing.T) {
	path := sampleTree(t)
	out := filepath.Join(t.TempDir(), "flat.tim")

	stdout := &bytes.Buffer{}
	exitCode := RunFlatten([]string{"-commented", "-o", out, path}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	if !strings.Contains(stdout.String(), "Wrote 4 TOAs to "+out) {
		t.Errorf("unexpected output: %s", stdout.String())
	}

	r := &timfile.Reader{KeepCommented: true}
	res, err := r.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.TOAs) != 4 || !res.TOAs[2].Commented {
		t.Errorf("flattened file lost TOAs: %+v", res.TOAs)
	}
}

func TestRunExport_JSONL(t *testing.T) {
	stdout := &bytes.Buffer{}
	exitCode := RunExport([]string{sampleTree(t)}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var toa timfile.TOA
	if err := json.Unmarshal([]byte(lines[2]), &toa); err != nil {
		t.Fatal(err)
	}
	if toa.Tag != "a2" || toa.Comment != "late" || toa.MJD.String() != "55010.5" {
		t.Errorf("unexpected TOA %+v", toa)
	}
}

func TestRunExport_CSV(t *testing.T) {
	stdout := &bytes.Buffer{}
	exitCode := RunExport([]string{"-format", "csv", sampleTree(t)}, stdout, &bytes.Buffer{})

	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}
	records, err := csv.NewReader(stdout).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header and 3 records, got %d", len(records))
	}
	if records[0][0] != "tag" {
		t.Errorf("unexpected header %v", records[0])
	}
	want := []string{"a2", "820", "55010.5", "2.5", "gbt", "-sys GBT"}
	for i, v := range want {
		if records[3][i] != v {
			t.Errorf("column %d: expected %q, got %q", i, v, records[3][i])
		}
	}
}

func TestRunExport_CBOR(t *testing.T) {
	out := filepath.Join(t.TempDir(), "toas.cbor")
	exitCode := RunExport([]string{"-format", "cbor", "-o", out, sampleTree(t)}, &bytes.Buffer{}, &bytes.Buffer{})
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := timfile.NewCBORDecoder(f)
	var got []string
	for {
		var toa timfile.TOA
		if err := dec.Decode(&toa); err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		got = append(got, toa.Tag)
	}
	if strings.Join(got, ",") != "a1,b1,a2" {
		t.Errorf("unexpected tags %v", got)
	}
}

func TestRunExport_UnknownFormat(t *testing.T) {
	stderr := &bytes.Buffer{}
	if code := RunExport([]string{"-format", "xml", "x.tim"}, &bytes.Buffer{}, stderr); code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "unknown format: xml") {
		t.Errorf("unexpected error: %s", stderr.String())
	}
}

func TestTraceFile(t *testing.T) {
	trace := filepath.Join(t.TempDir(), "read.plog")
	exitCode := RunShow([]string{"-trace", trace, sampleTree(t)}, &bytes.Buffer{}, &bytes.Buffer{})
	if exitCode != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, exitCode)
	}

	r, err := log.NewReader(trace)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	events, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	counts := make(map[log.Kind]int)
	for _, e := range events {
		if e.Format != log.FormatTim {
			t.Errorf("unexpected format %v", e.Format)
		}
		counts[e.Kind]++
	}
	if counts[log.KindFileOpen] != 2 || counts[log.KindInclude] != 1 || counts[log.KindRecord] != 3 {
		t.Errorf("unexpected event counts %v", counts)
	}
}

func TestBadLogLevel(t *testing.T) {
	stderr := &bytes.Buffer{}
	code := RunShow([]string{"-log-level", "loud", "x.tim"}, &bytes.Buffer{}, stderr)
	if code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
	if !strings.Contains(stderr.String(), "invalid log level") {
		t.Errorf("unexpected error: %s", stderr.String())
	}
}

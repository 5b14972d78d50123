package interactive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psrutils/psrutils-go/pkg/parfile"
)

func newEditor(t *testing.T, text string) (*Editor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.par")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	pf, _, err := parfile.ParseFile(path)
	require.NoError(t, err)
	return New(pf, path, nil, nil), path
}

func run(e *Editor, line string) (string, bool) {
	var buf bytes.Buffer
	quit := e.Execute(line, &buf)
	return buf.String(), quit
}

func TestEditorGetAndList(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\nF0 10.5 1 0.001\nF1 -1e-15\nJUMP -be GUPPI 0.1\n")

	out, _ := run(e, "get f0")
	assert.Contains(t, out, "10.5 (fit) +/- 0.001")

	out, _ = run(e, "get DM")
	assert.Contains(t, out, "DM is not set")

	out, _ = run(e, "list F")
	assert.Contains(t, out, "F0")
	assert.Contains(t, out, "F1")
	assert.NotContains(t, out, "PSR")

	out, _ = run(e, "ls")
	assert.Contains(t, out, "PSR")
	assert.Contains(t, out, "JUMP")
	assert.False(t, e.Dirty())
}

func TestEditorSet(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\nF0 10.5 1\n")

	out, _ := run(e, "set F0 11.25 0 0.5")
	assert.Contains(t, out, "Replaced F0")
	assert.True(t, e.Dirty())

	f0, ok := e.pf.Get("F0")
	require.True(t, ok)
	assert.Equal(t, 11.25, f0.Value.Number)
	assert.False(t, f0.Fitted())
	assert.Equal(t, 0.5, *f0.Uncertainty)

	out, _ = run(e, "set RAJ 04:37:15.8 1")
	assert.Contains(t, out, "Added RAJ")
	assert.Equal(t, []string{"PSR", "F0", "RAJ"}, e.pf.Names())

	out, _ = run(e, "set JUMP MJD 50000 50100 0.2")
	assert.Contains(t, out, "Added JUMP")
	assert.Len(t, e.pf.Jumps(), 1)
}

func TestEditorSetRejectsBadValues(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\n")

	for _, line := range []string{"set F0 fast", "set DECJ 95:00:00", "set F0", "set"} {
		out, _ := run(e, line)
		assert.True(t, strings.HasPrefix(out, "Error") || strings.HasPrefix(out, "Usage"), "%s: %s", line, out)
	}
	assert.False(t, e.Dirty())
	assert.Equal(t, 1, e.pf.Len())
}

func TestEditorFit(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\nF0 10.5\n")

	out, _ := run(e, "fit F0 1")
	assert.Contains(t, out, "(fit)")
	f0, _ := e.pf.Get("F0")
	assert.True(t, f0.Fitted())

	out, _ = run(e, "fit PSR 1")
	assert.Contains(t, out, "cannot be fitted")

	out, _ = run(e, "fit F0 yes")
	assert.Contains(t, out, "Usage")
}

func TestEditorDelete(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\nF0 10.5\n")

	out, _ := run(e, "del f0")
	assert.Contains(t, out, "Removed f0")
	assert.False(t, e.pf.Has("F0"))

	out, _ = run(e, "del f0")
	assert.Contains(t, out, "is not set")
}

func TestEditorCheck(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\nF0 10.5\nPEPOCH 55000\nDM 3\n")
	out, _ := run(e, "check")
	assert.Equal(t, "OK\n", out)

	run(e, "del DM")
	out, _ = run(e, "check")
	assert.Contains(t, out, "DM is not set")
}

func TestEditorWrite(t *testing.T) {
	e, path := newEditor(t, "PSR   J1\nF0 10.5\n")
	run(e, "set F1 -1e-15 1")

	out, _ := run(e, "write")
	assert.Contains(t, out, "Wrote 3 parameters")
	assert.False(t, e.Dirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "F1              -1e-15                    1\n")

	other := filepath.Join(t.TempDir(), "copy.par")
	out, _ = run(e, "write "+other)
	assert.Contains(t, out, other)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestEditorQuitWithUnsavedChanges(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\n")

	_, quit := run(e, "quit")
	assert.True(t, quit, "clean editor quits at once")

	e, _ = newEditor(t, "PSR J1\n")
	run(e, "set F0 1")
	out, quit := run(e, "q")
	assert.False(t, quit)
	assert.Contains(t, out, "Unsaved changes")

	_, quit = run(e, "exit")
	assert.True(t, quit, "second quit discards")
}

func TestEditorUnknownCommand(t *testing.T) {
	e, _ := newEditor(t, "PSR J1\n")
	out, quit := run(e, "frobnicate")
	assert.False(t, quit)
	assert.Contains(t, out, "Unknown command: frobnicate")

	out, _ = run(e, "   ")
	assert.Empty(t, out)
}

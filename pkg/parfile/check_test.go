package parfile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

func messages(l diag.List) []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.Message
	}
	return out
}

func TestCheckCompleteFile(t *testing.T) {
	pf, _ := mustParse(t, samplePar)
	assert.Empty(t, Check(pf))
}

func TestCheckMissingRequired(t *testing.T) {
	pf, _ := mustParse(t, "PSRB B1937+21\nF0 641.9\n")
	l := Check(pf)

	assert.Equal(t, 2, l.Count(diag.KindMissingParameter))
	assert.Equal(t, []string{"PEPOCH is not set", "DM is not set"}, messages(l))
	for _, d := range l {
		assert.Equal(t, diag.SeverityWarning, d.Severity)
	}
}

func TestCheckBadValues(t *testing.T) {
	text := "PSR J1\nF0 -3\nPEPOCH 0\nDM 1\nUNITS XYZ\nBINARY ell1\nTIMEEPH FB90\nT2CMETHOD NEW\nMODE 2\n"
	pf, _ := mustParse(t, text)
	l := Check(pf)

	assert.Equal(t, 2, l.Count(diag.KindInvalidRecord))
	assert.Equal(t, 3, l.Count(diag.KindUnknownValue), messages(l))
	assert.Contains(t, messages(l), `UNITS "XYZ" is not one of SI, TCB, TDB`)
}

func TestCheckGlitches(t *testing.T) {
	text := "PSR J1\nF0 1\nPEPOCH 5\nDM 1\n" +
		"GLEP_1 55000\nGLF0_1 1e-7\n" +
		"GLF0_3 2e-7\nGLPH_3 0.1\n"
	pf, _ := mustParse(t, text)
	l := Check(pf)

	assert.Equal(t, []string{
		"glitch 3 has no GLEP_3",
		"glitch indices are not contiguous: 3 follows 1",
	}, messages(l))
	assert.Equal(t, 7, l[0].Line)
}

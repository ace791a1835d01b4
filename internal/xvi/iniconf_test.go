package xvi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleINI = `[IDENTIFICATION]
PatientID=12345678
TreatmentID=Prostate 36Gy
ScanUID=1.3.46.423632.33783920233217242713.224.2023-03-21165402768

[ALIGNMENT.20230321; 16:54:02]
TubeKV=120.0
TubeKV=125.0
CouchShiftLat=0.21
garbage line without separator
; a comment
# another comment
=no key
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(sampleINI)
	require.NoError(t, err)

	v, ok := doc.Get("PatientID")
	assert.True(t, ok)
	assert.Equal(t, "12345678", v)

	v, ok = doc.Get("TreatmentID")
	assert.True(t, ok)
	assert.Equal(t, "Prostate 36Gy", v)

	// Duplicate keys: last write wins.
	kv, ok := doc.Float("TubeKV")
	assert.True(t, ok)
	assert.Equal(t, 125.0, kv)

	assert.Equal(t, 2, doc.Skipped, "garbage line and empty key should be skipped")
	assert.Equal(t, []string{"IDENTIFICATION", "ALIGNMENT.20230321; 16:54:02"}, doc.Sections())
}

func TestParseDocument_Empty(t *testing.T) {
	_, err := ParseDocument("; only a comment\n\n[SECTION]\n")
	require.ErrorIs(t, err, ErrMalformedConfig)
}

func TestDocumentRequire(t *testing.T) {
	doc, err := ParseDocument("ScanUID=abc\n")
	require.NoError(t, err)

	v, err := doc.Require("ScanUID")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = doc.Require("TreatmentUID")
	assert.ErrorIs(t, err, ErrMalformedConfig)
}

func TestDocumentFloat(t *testing.T) {
	doc, err := ParseDocument("A=1.5\nB=not-a-number\n")
	require.NoError(t, err)

	f, ok := doc.Float("A")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	_, ok = doc.Float("B")
	assert.False(t, ok)

	_, ok = doc.Float("C")
	assert.False(t, ok)
}

func TestAlignmentTime(t *testing.T) {
	doc, err := ParseDocument(sampleINI)
	require.NoError(t, err)

	at, ok := doc.AlignmentTime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 21, 16, 54, 2, 0, time.Local), at)
}

func TestAlignmentTime_Absent(t *testing.T) {
	doc, err := ParseDocument("[IDENTIFICATION]\nPatientID=1\n")
	require.NoError(t, err)

	_, ok := doc.AlignmentTime()
	assert.False(t, ok)
}

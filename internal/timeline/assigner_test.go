package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkaan/learn-crawler/internal/logging"
	"github.com/kkaan/learn-crawler/internal/registration"
	"github.com/kkaan/learn-crawler/internal/session"
)

func at(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	require.NoError(t, err)
	return &ts
}

func appliedRegistration() *registration.Registration {
	return &registration.Registration{
		Shift: registration.Reconcile(registration.AlignmentTuple{Lateral: -0.21}),
	}
}

func zeroRegistration() *registration.Registration {
	return &registration.Registration{
		Shift: registration.Reconcile(registration.AlignmentTuple{Roll: 360}),
	}
}

func newAssigner(t *testing.T) *Assigner {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewAssigner(logger)
}

func TestAssign_FractionGrouping(t *testing.T) {
	sessions := []*session.Session{
		{ScanID: "s2", Kind: session.KindCBCT, Timestamp: at(t, "2023-03-21 14:00")},
		{ScanID: "s3", Kind: session.KindCBCT, Timestamp: at(t, "2023-03-22 09:00")},
		{ScanID: "s1", Kind: session.KindCBCT, Timestamp: at(t, "2023-03-21 09:00")},
	}

	tl := newAssigner(t).Assign(sessions)

	require.Len(t, tl.Fractions, 2)

	fx0 := tl.Fractions[0]
	assert.Equal(t, 0, fx0.Index)
	assert.Equal(t, "FX0", fx0.Label())
	assert.Equal(t, "2023-03-21", fx0.Date)
	require.Len(t, fx0.Entries, 2)
	assert.Equal(t, "s1", fx0.Entries[0].Session.ScanID)
	assert.Equal(t, 1, fx0.Entries[0].IntraIndex)
	assert.Equal(t, "s2", fx0.Entries[1].Session.ScanID)
	assert.Equal(t, 2, fx0.Entries[1].IntraIndex)

	fx1 := tl.Fractions[1]
	assert.Equal(t, "FX1", fx1.Label())
	require.Len(t, fx1.Entries, 1)
	assert.Equal(t, "s3", fx1.Entries[0].Session.ScanID)
	assert.Equal(t, 1, fx1.Entries[0].IntraIndex)
}

func TestAssign_TieBrokenByScanID(t *testing.T) {
	ts := at(t, "2023-03-21 09:00")
	sessions := []*session.Session{
		{ScanID: "b", Kind: session.KindCBCT, Timestamp: ts},
		{ScanID: "a", Kind: session.KindCBCT, Timestamp: ts},
	}

	tl := newAssigner(t).Assign(sessions)
	require.Len(t, tl.Fractions, 1)
	assert.Equal(t, "a", tl.Fractions[0].Entries[0].Session.ScanID)
	assert.Equal(t, "b", tl.Fractions[0].Entries[1].Session.ScanID)
}

func TestAssign_UnknownAndUndatedExcluded(t *testing.T) {
	sessions := []*session.Session{
		{ScanID: "good", Kind: session.KindCBCT, Timestamp: at(t, "2023-03-21 09:00")},
		{ScanID: "mystery", Kind: session.KindUnknown, PresetName: "PlanarKV", Timestamp: at(t, "2023-03-21 10:00")},
		{ScanID: "undated", Kind: session.KindCBCT},
	}

	tl := newAssigner(t).Assign(sessions)

	require.Len(t, tl.Fractions, 1)
	require.Len(t, tl.Fractions[0].Entries, 1, "other sessions' indices unaffected")
	assert.Equal(t, 1, tl.Fractions[0].Entries[0].IntraIndex)

	reasons := map[string]string{}
	for _, ex := range tl.Exclusions {
		reasons[ex.ScanID] = ex.Reason
	}
	assert.Contains(t, reasons["mystery"], "unknown session kind")
	assert.Contains(t, reasons["undated"], "timestamp")
}

func TestAssign_EligibilityDoesNotMutateTimeline(t *testing.T) {
	sessions := []*session.Session{
		{
			ScanID: "applied", Kind: session.KindCBCT,
			Timestamp:       at(t, "2023-03-21 09:00"),
			HasRegistration: true, Registration: appliedRegistration(),
		},
		{
			ScanID: "zero-shift", Kind: session.KindCBCT,
			Timestamp:       at(t, "2023-03-21 10:00"),
			HasRegistration: true, Registration: zeroRegistration(),
		},
		{
			ScanID: "no-reg", Kind: session.KindCBCT,
			Timestamp: at(t, "2023-03-21 11:00"),
		},
	}

	tl := newAssigner(t).Assign(sessions)

	// Full timeline keeps everything visible for audit.
	require.Len(t, tl.Fractions, 1)
	assert.Len(t, tl.Fractions[0].Entries, 3)

	eligible := tl.Eligible()
	require.Len(t, eligible, 1)
	assert.Equal(t, "applied", eligible[0].Session.ScanID)

	reasons := map[string]string{}
	for _, ex := range tl.Exclusions {
		reasons[ex.ScanID] = ex.Reason
	}
	assert.Equal(t, "registration correction not applied", reasons["zero-shift"])
	assert.Equal(t, "no registration artifact", reasons["no-reg"])
	assert.NotContains(t, reasons, "applied")
}

func TestAssign_EmptyInput(t *testing.T) {
	tl := newAssigner(t).Assign(nil)
	assert.Empty(t, tl.Fractions)
	assert.Empty(t, tl.Exclusions)
	assert.Empty(t, tl.Eligible())
}

func TestAssign_PureFunctionOfInput(t *testing.T) {
	build := func() []*session.Session {
		return []*session.Session{
			{ScanID: "s1", Kind: session.KindCBCT, Timestamp: at(t, "2023-03-21 09:00")},
			{ScanID: "s2", Kind: session.KindCBCT, Timestamp: at(t, "2023-03-28 09:00")},
		}
	}

	a := newAssigner(t)
	first := a.Assign(build())
	second := a.Assign(build())

	// No process-wide counters: re-runs start fraction indices from zero.
	require.Len(t, second.Fractions, 2)
	assert.Equal(t, first.Fractions[0].Index, second.Fractions[0].Index)
	assert.Equal(t, 0, second.Fractions[0].Index)
	assert.Equal(t, 1, second.Fractions[1].Index)
}

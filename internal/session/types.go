// Package session discovers imaging acquisition sessions under a patient
// export tree and classifies their clinical intent.
package session

import (
	"time"

	"github.com/kkaan/learn-crawler/internal/registration"
)

// Kind is the classified intent of an acquisition.
type Kind string

const (
	KindCBCT          Kind = "CBCT"
	KindKIMLearning   Kind = "KIM_LEARNING"
	KindKIMMotionView Kind = "KIM_MOTION_VIEW"

	// KindUnknown marks presets outside the known vocabulary. Unknown
	// sessions stay in the session list but never enter the timeline.
	KindUnknown Kind = "UNKNOWN"
)

// Session is one imaging acquisition event. It is built once during
// discovery and not mutated afterwards except for the annotations added by
// classification and fraction assignment.
type Session struct {
	// Dir is the acquisition directory this session was built from.
	Dir string

	// ScanID is the vendor scan identifier, globally unique per
	// acquisition. Falls back to the DICOM UID or directory name when the
	// companion config is unusable, so every session stays addressable.
	ScanID string

	// Timestamp is parsed from the ScanID's embedded digits. Nil when
	// unparseable; such sessions are excluded from fraction assignment.
	Timestamp *time.Time

	TreatmentID string
	PresetName  string
	TubeKV      *float64
	TubeMA      *float64

	Kind Kind

	// HasRegistration is true when a registration artifact existed and
	// extracted cleanly.
	HasRegistration bool
	Registration    *registration.Registration

	// Notes collects non-fatal degradations observed while building the
	// session (missing metadata, corrupt registration, ...). Audit only.
	Notes []string
}

// ShiftRecord returns the reconciled clinical correction, or nil.
func (s *Session) ShiftRecord() *registration.ShiftRecord {
	if s.Registration == nil {
		return nil
	}
	return &s.Registration.Shift
}

// Eligible reports the clinical inclusion rule: a registration artifact
// exists and its reconciled correction was actually applied.
func (s *Session) Eligible() bool {
	return s.HasRegistration && s.Registration != nil && s.Registration.Shift.Applied
}

func (s *Session) addNote(note string) {
	s.Notes = append(s.Notes, note)
}

// Package timeline orders a patient's acquisition sessions into the
// clinical fraction timeline and applies the trial inclusion rule.
package timeline

import (
	"fmt"

	"github.com/kkaan/learn-crawler/internal/session"
)

// Entry is one session placed in a fraction, with its 1-based
// intra-fraction index in timestamp order.
type Entry struct {
	Session    *session.Session
	IntraIndex int
}

// Fraction groups the sessions of one calendar day. Indices are assigned in
// chronological order of first appearance and never re-ordered afterwards.
type Fraction struct {
	Index   int
	Date    string // calendar date, 2006-01-02
	Entries []Entry
}

// Label renders the fraction directory label (FX0, FX1, ...).
func (f Fraction) Label() string {
	return fmt.Sprintf("FX%d", f.Index)
}

// Exclusion records why a session is missing from the timeline or from the
// transfer-eligible subset. Reasons are human-readable; the report is for
// audit, not machine dispatch.
type Exclusion struct {
	ScanID string
	Reason string
}

// Timeline is the ordered, annotated output for one patient. The full
// timeline keeps ineligible sessions visible for audit; Eligible() yields
// the subset handed to export.
type Timeline struct {
	Fractions  []Fraction
	Exclusions []Exclusion
}

// Eligible returns the transfer-eligible entries, in timeline order, as a
// separate pass that does not mutate the timeline itself.
func (t *Timeline) Eligible() []Entry {
	var out []Entry
	for _, fx := range t.Fractions {
		for _, e := range fx.Entries {
			if e.Session.Eligible() {
				out = append(out, e)
			}
		}
	}
	return out
}

// Sessions returns every session placed in the timeline, in order.
func (t *Timeline) Sessions() []*session.Session {
	var out []*session.Session
	for _, fx := range t.Fractions {
		for _, e := range fx.Entries {
			out = append(out, e.Session)
		}
	}
	return out
}

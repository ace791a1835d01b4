package timeline

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kkaan/learn-crawler/internal/session"
)

// Assigner turns an unordered per-patient session set into the fraction
// timeline. Each call is a pure function of its input collection; fraction
// indices are scoped to the call, never process-wide.
type Assigner struct {
	log *zap.Logger

	// matchUndated enables the MotionView date-borrowing pre-pass.
	matchUndated bool
}

// NewAssigner creates an assigner with MotionView date matching enabled.
func NewAssigner(logger *zap.Logger) *Assigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assigner{log: logger, matchUndated: true}
}

// WithoutDateMatching disables the MotionView pre-pass.
func (a *Assigner) WithoutDateMatching() *Assigner {
	a.matchUndated = false
	return a
}

// Assign builds the timeline:
//
//  1. borrow timestamps for undated MotionView sessions (optional pre-pass)
//  2. drop sessions with no timestamp or UNKNOWN kind into the exclusion
//     report
//  3. sort by timestamp, ties broken by scan identifier
//  4. group by calendar day into fractions, indexed chronologically
//  5. assign 1-based intra-fraction indices
//
// The clinical inclusion rule is applied last as a separate pass: sessions
// without an applied registration stay visible in the timeline but are
// reported as excluded from the eligible subset.
func (a *Assigner) Assign(sessions []*session.Session) *Timeline {
	tl := &Timeline{}

	if a.matchUndated {
		a.matchUndatedMotionView(sessions)
	}

	var usable []*session.Session
	for _, s := range sessions {
		switch {
		case s.Kind == session.KindUnknown:
			tl.Exclusions = append(tl.Exclusions, Exclusion{
				ScanID: s.ScanID,
				Reason: fmt.Sprintf("unknown session kind (preset %q)", s.PresetName),
			})
		case s.Timestamp == nil:
			tl.Exclusions = append(tl.Exclusions, Exclusion{
				ScanID: s.ScanID,
				Reason: "no derivable scan timestamp",
			})
		default:
			usable = append(usable, s)
		}
	}

	sort.SliceStable(usable, func(i, j int) bool {
		ti, tj := *usable[i].Timestamp, *usable[j].Timestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return usable[i].ScanID < usable[j].ScanID
	})

	for _, s := range usable {
		date := s.Timestamp.Format("2006-01-02")
		if n := len(tl.Fractions); n == 0 || tl.Fractions[n-1].Date != date {
			tl.Fractions = append(tl.Fractions, Fraction{Index: len(tl.Fractions), Date: date})
		}
		fx := &tl.Fractions[len(tl.Fractions)-1]
		fx.Entries = append(fx.Entries, Entry{Session: s, IntraIndex: len(fx.Entries) + 1})
	}

	for _, s := range usable {
		switch {
		case !s.HasRegistration:
			tl.Exclusions = append(tl.Exclusions, Exclusion{
				ScanID: s.ScanID,
				Reason: "no registration artifact",
			})
		case !s.Eligible():
			tl.Exclusions = append(tl.Exclusions, Exclusion{
				ScanID: s.ScanID,
				Reason: "registration correction not applied",
			})
		}
	}

	a.log.Info("fraction assignment complete",
		zap.Int("sessions", len(sessions)),
		zap.Int("fractions", len(tl.Fractions)),
		zap.Int("excluded", len(tl.Exclusions)))
	return tl
}

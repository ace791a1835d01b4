package timeline

import (
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/kkaan/learn-crawler/internal/session"
)

// matchUndatedMotionView backfills timestamps on MotionView sessions whose
// companion config carried no parseable ScanUID. MotionView acquisitions
// share a parent directory with the dated sessions and img_* names are
// sequential, so alphabetical proximity correlates with temporal proximity.
//
// Matching prefers a dated session with the same treatment identifier,
// nearest by directory sort position; failing that, the nearest dated
// session overall. Borrowed timestamps place the session in the right
// fraction; they never make it transfer-eligible.
func (a *Assigner) matchUndatedMotionView(sessions []*session.Session) {
	var dated, undated []*session.Session
	for _, s := range sessions {
		switch {
		case s.Timestamp != nil:
			dated = append(dated, s)
		case s.Kind == session.KindKIMMotionView:
			undated = append(undated, s)
		}
	}
	if len(dated) == 0 || len(undated) == 0 {
		return
	}

	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, filepath.Base(s.Dir))
	}
	sort.Strings(names)
	position := make(map[string]int, len(names))
	for i, name := range names {
		position[name] = i
	}

	byTreatment := make(map[string][]*session.Session)
	for _, d := range dated {
		if d.TreatmentID != "" {
			byTreatment[d.TreatmentID] = append(byTreatment[d.TreatmentID], d)
		}
	}

	for _, mv := range undated {
		candidates := byTreatment[mv.TreatmentID]
		if mv.TreatmentID == "" || len(candidates) == 0 {
			candidates = dated
		}

		best := nearestByPosition(candidates, position, position[filepath.Base(mv.Dir)])
		ts := *best.Timestamp
		mv.Timestamp = &ts
		mv.Notes = append(mv.Notes, "timestamp borrowed from "+best.ScanID)
		a.log.Info("matched undated MotionView session",
			zap.String("scan_id", mv.ScanID),
			zap.String("borrowed_from", best.ScanID),
			zap.String("date", ts.Format("2006-01-02")))
	}
}

func nearestByPosition(candidates []*session.Session, position map[string]int, target int) *session.Session {
	best := candidates[0]
	bestDist := distance(position[filepath.Base(best.Dir)], target)
	for _, c := range candidates[1:] {
		if d := distance(position[filepath.Base(c.Dir)], target); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

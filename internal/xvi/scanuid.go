package xvi

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ScanUID strings end with a fixed-width date-time suffix, e.g.
//
//	1.3.46.423632.33783920233217242713.224.2023-03-21165402768
//
// where the trailing digits encode YYYY-MM-DDHHMMSSmmm.
var scanUIDSuffix = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})(\d{2})(\d{2})(\d{2})(\d{3})$`)

// ScanTimestamp extracts the acquisition timestamp embedded in a ScanUID.
// The returned error is advisory: callers keep the session and exclude it
// from chronological ordering instead of aborting.
func ScanTimestamp(scanUID string) (time.Time, error) {
	m := scanUIDSuffix.FindStringSubmatch(scanUID)
	if m == nil {
		return time.Time{}, fmt.Errorf("no datetime suffix in ScanUID %q", scanUID)
	}

	t, err := time.ParseInLocation("2006-01-02 150405", m[1]+" "+m[2]+m[3]+m[4], time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime in ScanUID %q: %w", scanUID, err)
	}

	ms, _ := strconv.Atoi(m[5])
	return t.Add(time.Duration(ms) * time.Millisecond), nil
}

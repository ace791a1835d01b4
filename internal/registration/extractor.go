package registration

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"go.uber.org/zap"

	"github.com/kkaan/learn-crawler/internal/xvi"
)

const (
	clipboxKey    = "Align.clip1"
	maskKey       = "Align.mask1"
	unmatchedKey  = "OnlineToRefTransformUnMatched"
	correctionKey = "OnlineToRefTransformCorrection"
	protocolKey   = "RegistrationProtocol"
)

// Isocenter is the reference isocenter recorded alongside a registration.
type Isocenter struct {
	X, Y, Z float64
}

// Registration is everything recovered from one RPS record.
type Registration struct {
	// Shift is the canonical clinical correction derived from the clipbox
	// alignment, including the raw source matrices.
	Shift ShiftRecord

	// Mask is the raw Align.mask1 tuple when the record carries one.
	// Retained for audit; the clipbox tuple is canonical.
	Mask *AlignmentTuple

	// ReportedCouch holds the couch shifts as written by the vendor
	// (CouchShiftLat/Long/Height keys), for cross-checking against the
	// values derived from Shift.
	ReportedCouch *CouchShift

	Isocenter  *Isocenter
	Protocol   string
	RecordedAt *time.Time
}

// Extractor runs the full pipeline for one RPS record:
// archive -> key=value text -> matrices/tuples -> reconciled shift record.
type Extractor struct {
	log        *zap.Logger
	archiveTag tag.Tag
}

// NewExtractor creates an extractor using the default private archive tag.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{log: logger, archiveTag: DefaultArchiveTag}
}

// WithArchiveTag overrides the private element locator. Useful when a site
// export remaps the vendor block.
func (e *Extractor) WithArchiveTag(t tag.Tag) *Extractor {
	e.archiveTag = t
	return e
}

// ExtractFile reads an RPS DICOM file and extracts its registration.
func (e *Extractor) ExtractFile(path string) (*Registration, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("parse DICOM %s: %w", path, err)
	}
	return e.ExtractDataset(&ds)
}

// ExtractDataset extracts the registration from an already-parsed record.
func (e *Extractor) ExtractDataset(ds *dicom.Dataset) (*Registration, error) {
	members, err := UnpackDataset(ds, e.archiveTag)
	if err != nil {
		return nil, err
	}

	ini, ok := findINIMember(members)
	if !ok {
		return nil, fmt.Errorf("%w: no .INI.XVI member in archive", ErrArtifactNotFound)
	}

	doc, err := xvi.ParseDocument(string(ini.Data))
	if err != nil {
		return nil, fmt.Errorf("registration member %q: %w", ini.Name, err)
	}
	if doc.Skipped > 0 {
		e.log.Debug("skipped malformed config lines",
			zap.String("member", ini.Name),
			zap.Int("lines", doc.Skipped))
	}

	return e.fromDocument(doc)
}

func (e *Extractor) fromDocument(doc *xvi.Document) (*Registration, error) {
	clipRaw, ok := doc.Get(clipboxKey)
	if !ok {
		return nil, fmt.Errorf("%w: no clipbox alignment (%s)", ErrArtifactNotFound, clipboxKey)
	}
	clip, err := ParseAlignment(clipRaw)
	if err != nil {
		return nil, fmt.Errorf("clipbox alignment: %w", err)
	}

	reg := &Registration{Shift: Reconcile(clip)}

	if raw, ok := doc.Get(unmatchedKey); ok {
		m, err := ParseMatrix(raw)
		if err != nil {
			return nil, fmt.Errorf("unmatched transform: %w", err)
		}
		reg.Shift.Unmatched = &m
	}
	if raw, ok := doc.Get(correctionKey); ok {
		m, err := ParseMatrix(raw)
		if err != nil {
			return nil, fmt.Errorf("correction transform: %w", err)
		}
		reg.Shift.Correction = &m
	}

	if raw, ok := doc.Get(maskKey); ok {
		mask, err := ParseAlignment(raw)
		if err != nil {
			e.log.Warn("ignoring malformed mask alignment", zap.Error(err))
		} else {
			reg.Mask = &mask
		}
	}

	if lat, ok := doc.Float("CouchShiftLat"); ok {
		long, okLong := doc.Float("CouchShiftLong")
		height, okHeight := doc.Float("CouchShiftHeight")
		if okLong && okHeight {
			reg.ReportedCouch = &CouchShift{Lateral: lat, Longitudinal: long, Vertical: height}
		}
	}

	if x, ok := doc.Float("IsocX"); ok {
		y, okY := doc.Float("IsocY")
		z, okZ := doc.Float("IsocZ")
		if okY && okZ {
			reg.Isocenter = &Isocenter{X: x, Y: y, Z: z}
		}
	}

	if proto, ok := doc.Get(protocolKey); ok {
		reg.Protocol = proto
	}

	if at, ok := recordedAt(doc); ok {
		reg.RecordedAt = &at
	}

	return reg, nil
}

// dateTimeValue matches the DateTime=YYYYMMDD; HH:MM:SS key written next to
// the alignment block.
var dateTimeValue = regexp.MustCompile(`^(\d{8});\s*(\d{2}:\d{2}:\d{2})$`)

func recordedAt(doc *xvi.Document) (time.Time, bool) {
	if raw, ok := doc.Get("DateTime"); ok {
		if m := dateTimeValue.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
			if t, err := time.ParseInLocation("20060102 15:04:05", m[1]+" "+m[2], time.Local); err == nil {
				return t, true
			}
		}
	}
	return doc.AlignmentTime()
}

func findINIMember(members []Member) (Member, bool) {
	for _, m := range members {
		if strings.HasSuffix(strings.ToUpper(m.Name), ".INI.XVI") {
			return m, true
		}
	}
	return Member{}, false
}

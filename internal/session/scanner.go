package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kkaan/learn-crawler/internal/registration"
	"github.com/kkaan/learn-crawler/internal/xvi"
)

// ErrMissingImagesRoot is the precondition failure for a patient without an
// acquisition tree. Unlike per-acquisition problems it aborts the patient.
var ErrMissingImagesRoot = errors.New("patient images root missing")

const (
	// DefaultImagesSubdir is where XVI keeps acquisition directories under
	// a patient root.
	DefaultImagesSubdir = "IMAGES"

	// DefaultDirPrefix is the acquisition-directory naming pattern.
	DefaultDirPrefix = "img_"

	framesFile = "_Frames.xml"
	reconDir   = "Reconstruction"
)

// ScannerConfig controls discovery.
type ScannerConfig struct {
	ImagesSubdir string `koanf:"images_subdir"`
	DirPrefix    string `koanf:"dir_prefix"`
}

// RegistrationExtractor extracts the registration from an RPS record file.
// Satisfied by *registration.Extractor.
type RegistrationExtractor interface {
	ExtractFile(path string) (*registration.Registration, error)
}

// Scanner enumerates acquisition directories and builds Sessions from their
// metadata and companion files. Per-acquisition failures degrade the single
// session; they never abort the patient scan.
type Scanner struct {
	cfg        ScannerConfig
	log        *zap.Logger
	classifier *Classifier
	extractor  RegistrationExtractor
}

// NewScanner creates a scanner. Zero-value config fields fall back to the
// XVI defaults; nil classifier selects the default rule set.
func NewScanner(cfg ScannerConfig, classifier *Classifier, extractor RegistrationExtractor, logger *zap.Logger) *Scanner {
	if cfg.ImagesSubdir == "" {
		cfg.ImagesSubdir = DefaultImagesSubdir
	}
	if cfg.DirPrefix == "" {
		cfg.DirPrefix = DefaultDirPrefix
	}
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = registration.NewExtractor(logger)
	}
	return &Scanner{cfg: cfg, log: logger, classifier: classifier, extractor: extractor}
}

// ListAcquisitionDirs returns the acquisition directories under a patient
// root, sorted by name. A missing root or images subdirectory is a
// precondition failure.
func (s *Scanner) ListAcquisitionDirs(patientRoot string) ([]string, error) {
	imagesDir := filepath.Join(patientRoot, s.cfg.ImagesSubdir)
	entries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingImagesRoot, imagesDir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), s.cfg.DirPrefix) {
			dirs = append(dirs, filepath.Join(imagesDir, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ScanAcquisition builds the Session for one acquisition directory. It
// always returns a session; any failure is recorded as a degradation note
// on the session rather than an error.
func (s *Scanner) ScanAcquisition(ctx context.Context, dir string) *Session {
	sess := &Session{
		Dir:    dir,
		ScanID: filepath.Base(dir),
		Kind:   KindUnknown,
	}

	if err := ctx.Err(); err != nil {
		sess.addNote("scan abandoned: " + err.Error())
		return sess
	}

	meta, err := xvi.ParseFramesFile(filepath.Join(dir, framesFile))
	if err != nil {
		s.log.Warn("unusable frame metadata", zap.String("dir", dir), zap.Error(err))
		sess.addNote("frame metadata unusable: " + err.Error())
	} else {
		sess.TreatmentID = meta.TreatmentID
		sess.PresetName = meta.PresetName
		sess.TubeKV = meta.TubeKV
		sess.TubeMA = meta.TubeMA
		if meta.DicomUID != "" {
			sess.ScanID = meta.DicomUID
		}

		sess.Kind = s.classifier.Classify(meta.PresetName)
		if sess.Kind == KindUnknown {
			s.log.Warn("unknown acquisition preset",
				zap.String("dir", dir),
				zap.String("preset", meta.PresetName))
			sess.addNote(fmt.Sprintf("unknown preset %q", meta.PresetName))
		}
	}

	s.readCompanionConfig(sess)
	s.extractRegistration(sess)
	return sess
}

// readCompanionConfig pulls the scan identifier and its embedded timestamp
// from the first Reconstruction/*.INI file.
func (s *Scanner) readCompanionConfig(sess *Session) {
	iniFiles, _ := filepath.Glob(filepath.Join(sess.Dir, reconDir, "*.INI"))
	if len(iniFiles) == 0 {
		sess.addNote("no reconstruction config")
		return
	}
	sort.Strings(iniFiles)

	data, err := os.ReadFile(iniFiles[0])
	if err != nil {
		s.log.Warn("unreadable reconstruction config", zap.String("path", iniFiles[0]), zap.Error(err))
		sess.addNote("reconstruction config unreadable: " + err.Error())
		return
	}

	doc, err := xvi.ParseDocument(string(data))
	if err != nil {
		s.log.Warn("malformed reconstruction config", zap.String("path", iniFiles[0]), zap.Error(err))
		sess.addNote("reconstruction config malformed: " + err.Error())
		return
	}

	scanUID, ok := doc.Get("ScanUID")
	if !ok {
		sess.addNote("reconstruction config has no ScanUID")
		return
	}
	sess.ScanID = scanUID

	ts, err := xvi.ScanTimestamp(scanUID)
	if err != nil {
		// Soft failure: the session stays, just unordered.
		s.log.Warn("no timestamp in ScanUID", zap.String("scan_id", scanUID), zap.Error(err))
		sess.addNote("timestamp unparseable: " + err.Error())
		return
	}
	sess.Timestamp = &ts
}

// extractRegistration runs the registration pipeline on the first
// Reconstruction/*.dcm record, when one exists.
func (s *Scanner) extractRegistration(sess *Session) {
	dcmFiles, _ := filepath.Glob(filepath.Join(sess.Dir, reconDir, "*.dcm"))
	if len(dcmFiles) == 0 {
		return
	}
	sort.Strings(dcmFiles)

	reg, err := s.extractor.ExtractFile(dcmFiles[0])
	if err != nil {
		// Degrade to no-registration; the exclusion report carries the why.
		s.log.Warn("registration extraction failed",
			zap.String("path", dcmFiles[0]),
			zap.Error(err))
		sess.addNote("registration unusable: " + err.Error())
		return
	}

	sess.HasRegistration = true
	sess.Registration = reg
}

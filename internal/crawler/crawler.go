// Package crawler orchestrates a full patient directory crawl: acquisition
// discovery, concurrent session scanning, and treatment timeline assembly.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kkaan/learn-crawler/internal/session"
	"github.com/kkaan/learn-crawler/internal/timeline"
)

// ErrPatientRootMissing indicates the patient export directory does not exist.
var ErrPatientRootMissing = errors.New("patient root missing")

// Result is the output of one crawl over a patient export tree.
type Result struct {
	// RunID uniquely identifies this crawl.
	RunID string `json:"run_id"`

	PatientRoot string    `json:"patient_root"`
	StartedAt   time.Time `json:"started_at"`
	Duration    float64   `json:"duration_seconds"`

	// Sessions holds every scanned acquisition in directory order,
	// including sessions the timeline excludes.
	Sessions []*session.Session `json:"sessions"`

	Timeline *timeline.Timeline `json:"timeline"`
}

// Crawler scans a patient export tree and assembles its treatment timeline.
type Crawler struct {
	scanner     *session.Scanner
	assigner    *timeline.Assigner
	metrics     *Metrics
	logger      *zap.Logger
	concurrency int
}

// Options configures a Crawler.
type Options struct {
	// Concurrency bounds the per-acquisition worker pool. Values below 1
	// are treated as 1.
	Concurrency int

	// Metrics is optional. When nil no metrics are recorded.
	Metrics *Metrics
}

// New creates a Crawler. scanner and assigner are required; a nil logger
// falls back to a no-op logger.
func New(scanner *session.Scanner, assigner *timeline.Assigner, logger *zap.Logger, opts Options) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Crawler{
		scanner:     scanner,
		assigner:    assigner,
		metrics:     opts.Metrics,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run crawls patientRoot and returns the assembled result.
//
// Acquisition directories are scanned concurrently up to the configured
// bound. Per-session failures degrade the session rather than aborting the
// run; only a missing patient root or context cancellation returns an error.
func (c *Crawler) Run(ctx context.Context, patientRoot string) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(patientRoot); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPatientRootMissing, patientRoot)
	}

	dirs, err := c.scanner.ListAcquisitionDirs(patientRoot)
	if err != nil {
		return nil, err
	}

	c.logger.Info("starting crawl",
		zap.String("patient_root", patientRoot),
		zap.Int("acquisitions", len(dirs)),
		zap.Int("concurrency", c.concurrency))

	sessions := c.scanAll(ctx, dirs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, sess := range sessions {
		c.metrics.recordSession(string(sess.Kind), len(sess.Notes) > 0)
		c.metrics.recordRegistration(sess.HasRegistration)
	}

	tl := c.assigner.Assign(sessions)
	c.metrics.recordTimeline(len(tl.Fractions), len(tl.Exclusions))

	elapsed := time.Since(start)
	c.metrics.observeRun(elapsed.Seconds())

	c.logger.Info("crawl complete",
		zap.Int("sessions", len(sessions)),
		zap.Int("fractions", len(tl.Fractions)),
		zap.Int("excluded", len(tl.Exclusions)),
		zap.Duration("duration", elapsed))

	return &Result{
		RunID:       uuid.NewString(),
		PatientRoot: patientRoot,
		StartedAt:   start.UTC(),
		Duration:    elapsed.Seconds(),
		Sessions:    sessions,
		Timeline:    tl,
	}, nil
}

// scanAll fans acquisition scans out over a bounded worker pool. Results
// keep directory order regardless of completion order.
func (c *Crawler) scanAll(ctx context.Context, dirs []string) []*session.Session {
	if len(dirs) == 0 {
		return nil
	}

	results := make([]*session.Session, len(dirs))
	sem := make(chan struct{}, c.concurrency)

	var wg sync.WaitGroup
	for i, dir := range dirs {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			results[i] = c.scanner.ScanAcquisition(ctx, dir)
		}(i, dir)
	}
	wg.Wait()

	sessions := make([]*session.Session, 0, len(results))
	for _, sess := range results {
		if sess != nil {
			sessions = append(sessions, sess)
		}
	}
	return sessions
}

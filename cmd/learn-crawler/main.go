// Package main implements the learn-crawler CLI for crawling XVI patient
// export trees into treatment timeline reports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kkaan/learn-crawler/internal/config"
	"github.com/kkaan/learn-crawler/internal/crawler"
	"github.com/kkaan/learn-crawler/internal/logging"
	"github.com/kkaan/learn-crawler/internal/registration"
	"github.com/kkaan/learn-crawler/internal/session"
	"github.com/kkaan/learn-crawler/internal/timeline"
)

var (
	configPath string
	outputPath string

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "learn-crawler",
	Short: "Crawl XVI patient export trees into treatment timelines",
	Long: `learn-crawler scans an Elekta XVI patient export directory, extracts the
registration shift embedded in each acquisition's export archive, and
assembles the sessions into a per-fraction treatment timeline.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <patient-root>",
	Short: "Scan one patient export directory and emit a JSON report",
	Long: `Scan one patient export directory and emit a JSON report.

The report holds every discovered session, the assembled fraction timeline,
and the exclusion record for sessions that did not make the timeline.

Examples:
  # Report to stdout
  learn-crawler scan /data/exports/patient123

  # Report to a file, with a metrics listener
  LEARN_METRICS_ADDR=:9912 learn-crawler scan -o report.json /data/exports/patient123`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&outputPath, "output", "o", "-", "report destination, '-' for stdout")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rules, err := cfg.ClassifierRules()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *crawler.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = crawler.NewMetrics(prometheus.DefaultRegisterer)
		go serveMetrics(ctx, cfg.Metrics.Addr, logger)
	}

	scanner := session.NewScanner(session.ScannerConfig{
		ImagesSubdir: cfg.Scan.ImagesSubdir,
		DirPrefix:    cfg.Scan.DirPrefix,
	}, session.NewClassifier(rules), registration.NewExtractor(logger), logger)

	assigner := timeline.NewAssigner(logger)
	if cfg.Scan.DisableDateMatching {
		assigner = assigner.WithoutDateMatching()
	}

	c := crawler.New(scanner, assigner, logger, crawler.Options{
		Concurrency: cfg.Scan.Concurrency,
		Metrics:     metrics,
	})

	result, err := c.Run(ctx, args[0])
	if err != nil {
		return err
	}
	return writeReport(result, outputPath)
}

func writeReport(result *crawler.Result, path string) error {
	out := os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// serveMetrics exposes /metrics until the context is cancelled.
func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics listener failed", zap.Error(err))
	}
}

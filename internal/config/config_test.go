package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkaan/learn-crawler/internal/session"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "IMAGES", cfg.Scan.ImagesSubdir)
	assert.Equal(t, "img_", cfg.Scan.DirPrefix)
	assert.Equal(t, 4, cfg.Scan.Concurrency)
	assert.False(t, cfg.Scan.DisableDateMatching)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Classify.Rules)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
scan:
  images_subdir: Exports
  concurrency: 8
logging:
  level: debug
  format: json
classify:
  rules:
    - name: proton
      match: [proton]
      kind: CBCT
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Exports", cfg.Scan.ImagesSubdir)
	assert.Equal(t, "img_", cfg.Scan.DirPrefix, "unset fields keep defaults")
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	require.Len(t, cfg.Classify.Rules, 1)
	assert.Equal(t, "proton", cfg.Classify.Rules[0].Name)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  concurrency: 2\n"), 0o644))

	t.Setenv("LEARN_SCAN_CONCURRENCY", "16")
	t.Setenv("LEARN_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Scan.Concurrency, "environment beats file")
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Scan.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "level",
		},
		{
			name: "rule without match terms",
			mutate: func(c *Config) {
				c.Classify.Rules = []ClassifyRule{{Name: "empty", Kind: "CBCT"}}
			},
			wantErr: "match",
		},
		{
			name: "rule with unknown kind",
			mutate: func(c *Config) {
				c.Classify.Rules = []ClassifyRule{{Name: "bad", Match: []string{"x"}, Kind: "MRI"}}
			},
			wantErr: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			applyDefaults(&cfg)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClassifierRules(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	cfg.Classify.Rules = []ClassifyRule{
		{Name: "site", Match: []string{"pelvis", "prostate"}, Kind: "KIM_LEARNING"},
	}

	rules, err := cfg.ClassifierRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "site", rules[0].Name)
	assert.Equal(t, []string{"pelvis", "prostate"}, rules[0].Match)
	assert.Equal(t, session.KindKIMLearning, rules[0].Kind)
}

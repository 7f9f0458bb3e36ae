// Package projectconfig provides the ProjectConfig struct and loader for
// .callscore.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/repcoach/callscore/internal/graders"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the project configuration file.
const FileName = ".callscore.yaml"

// Default values for project configuration. New() references them and no other
// code should duplicate them.
const (
	DefaultWorkers    = 4
	DefaultFormat     = "json"
	DefaultResultsDir = ""

	DefaultCacheDir = ".callscore-cache"

	DefaultServerPort         = 8080
	DefaultServerMaxBodyBytes = 10 << 20

	DefaultLowThreshold  = 50.0
	DefaultHighThreshold = 80.0
)

// DefaultsConfig holds default scoring parameters.
type DefaultsConfig struct {
	Workers    int      `yaml:"workers,omitempty"`
	MinScore   *float64 `yaml:"min_score,omitempty"`
	Format     string   `yaml:"format,omitempty"`
	ResultsDir string   `yaml:"results_dir,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ServerConfig holds web API settings.
type ServerConfig struct {
	Port         int   `yaml:"port,omitempty"`
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty"`
}

// QualityConfig tunes the conversation_quality deductions.
type QualityConfig struct {
	Cap                float64 `yaml:"cap,omitempty"`
	PerFillerPerMinute float64 `yaml:"per_filler_per_minute,omitempty"`
	PerInterruption    float64 `yaml:"per_interruption,omitempty"`
	PaceDivisor        float64 `yaml:"pace_divisor,omitempty"`
}

// ThresholdsConfig holds the low/high score bands reported for batches.
type ThresholdsConfig struct {
	Low  float64 `yaml:"low,omitempty"`
	High float64 `yaml:"high,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .callscore.yaml.
type ProjectConfig struct {
	Defaults   DefaultsConfig   `yaml:"defaults,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Quality    QualityConfig    `yaml:"quality,omitempty"`
	Thresholds ThresholdsConfig `yaml:"thresholds,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	penalties := graders.DefaultPenalties()
	return &ProjectConfig{
		Defaults: DefaultsConfig{
			Workers:    DefaultWorkers,
			Format:     DefaultFormat,
			ResultsDir: DefaultResultsDir,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Server: ServerConfig{
			Port:         DefaultServerPort,
			MaxBodyBytes: DefaultServerMaxBodyBytes,
		},
		Quality: QualityConfig{
			Cap:                penalties.Cap,
			PerFillerPerMinute: penalties.PerFillerPerMinute,
			PerInterruption:    penalties.PerInterruption,
			PaceDivisor:        penalties.PaceDivisor,
		},
		Thresholds: ThresholdsConfig{
			Low:  DefaultLowThreshold,
			High: DefaultHighThreshold,
		},
	}
}

// Penalties converts the quality section into grader penalties.
func (c *ProjectConfig) Penalties() graders.Penalties {
	return graders.Penalties{
		Cap:                c.Quality.Cap,
		PerFillerPerMinute: c.Quality.PerFillerPerMinute,
		PerInterruption:    c.Quality.PerInterruption,
		PaceDivisor:        c.Quality.PaceDivisor,
	}
}

// CacheEnabled reports whether result caching is on.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// Load finds .callscore.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)

	if cfg.Thresholds.Low > cfg.Thresholds.High {
		return nil, fmt.Errorf("%s: thresholds.low (%v) is above thresholds.high (%v)", FileName, cfg.Thresholds.Low, cfg.Thresholds.High)
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .callscore.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Defaults
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.MinScore != nil {
		dst.Defaults.MinScore = src.Defaults.MinScore
	}
	if src.Defaults.Format != "" {
		dst.Defaults.Format = src.Defaults.Format
	}
	if src.Defaults.ResultsDir != "" {
		dst.Defaults.ResultsDir = src.Defaults.ResultsDir
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.MaxBodyBytes != 0 {
		dst.Server.MaxBodyBytes = src.Server.MaxBodyBytes
	}

	// Quality
	if src.Quality.Cap != 0 {
		dst.Quality.Cap = src.Quality.Cap
	}
	if src.Quality.PerFillerPerMinute != 0 {
		dst.Quality.PerFillerPerMinute = src.Quality.PerFillerPerMinute
	}
	if src.Quality.PerInterruption != 0 {
		dst.Quality.PerInterruption = src.Quality.PerInterruption
	}
	if src.Quality.PaceDivisor != 0 {
		dst.Quality.PaceDivisor = src.Quality.PaceDivisor
	}

	// Thresholds
	if src.Thresholds.Low != 0 {
		dst.Thresholds.Low = src.Thresholds.Low
	}
	if src.Thresholds.High != 0 {
		dst.Thresholds.High = src.Thresholds.High
	}
}

func boolPtr(b bool) *bool {
	return &b
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/engine"
	"github.com/blackwell-systems/reportwatch/internal/insight"
	"github.com/blackwell-systems/reportwatch/internal/recommend"
	"github.com/spf13/viper"
)

// Config is the top-level reportwatch configuration.
type Config struct {
	DBPath     string     `mapstructure:"db_path"`
	Server     Server     `mapstructure:"server"`
	Log        Log        `mapstructure:"log"`
	Thresholds Thresholds `mapstructure:"thresholds"`
	Recommend  Recommend  `mapstructure:"recommend"`
	Output     Output     `mapstructure:"output"`
}

// Server defines the HTTP listener.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Log defines the process logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Thresholds defines the anomaly detector limits.
type Thresholds struct {
	SalesBaselineRatio float64 `mapstructure:"sales_baseline_ratio"`
	SalesDropRatio     float64 `mapstructure:"sales_drop_ratio"`
	EmptyRowRatio      float64 `mapstructure:"empty_row_ratio"`
	SlowResponseMs     float64 `mapstructure:"slow_response_ms"`
	MinRowCount        int     `mapstructure:"min_row_count"`
	MaxRangeDays       int     `mapstructure:"max_range_days"`
}

// Recommend defines history reads and strategy limits.
type Recommend struct {
	HistoryDays      int      `mapstructure:"history_days"`
	HistoryLimit     int      `mapstructure:"history_limit"`
	MaxItems         int      `mapstructure:"max_items"`
	SimilarityWindow int      `mapstructure:"similarity_window"`
	RecencyDays      int      `mapstructure:"recency_days"`
	Keywords         []string `mapstructure:"keywords"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with REPORTWATCH_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", DBPath())
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.shutdown_timeout", DefaultServer.ShutdownTimeout)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.format", DefaultLog.Format)
	v.SetDefault("thresholds.sales_baseline_ratio", DefaultThresholds.SalesBaselineRatio)
	v.SetDefault("thresholds.sales_drop_ratio", DefaultThresholds.SalesDropRatio)
	v.SetDefault("thresholds.empty_row_ratio", DefaultThresholds.EmptyRowRatio)
	v.SetDefault("thresholds.slow_response_ms", DefaultThresholds.SlowResponseMs)
	v.SetDefault("thresholds.min_row_count", DefaultThresholds.MinRowCount)
	v.SetDefault("thresholds.max_range_days", DefaultThresholds.MaxRangeDays)
	v.SetDefault("recommend.history_days", DefaultRecommend.HistoryDays)
	v.SetDefault("recommend.history_limit", DefaultRecommend.HistoryLimit)
	v.SetDefault("recommend.max_items", DefaultRecommend.MaxItems)
	v.SetDefault("recommend.similarity_window", DefaultRecommend.SimilarityWindow)
	v.SetDefault("recommend.recency_days", DefaultRecommend.RecencyDays)
	v.SetDefault("recommend.keywords", DefaultRecommend.Keywords)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = ConfigFile()
	}
	v.SetConfigFile(expandPath(cfgFile))

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.DBPath = expandPath(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no detector or strategy can work with.
func (c *Config) Validate() error {
	t := c.Thresholds
	switch {
	case t.SalesBaselineRatio <= 0 || t.SalesDropRatio <= 0:
		return fmt.Errorf("thresholds: sales ratios must be positive")
	case t.EmptyRowRatio < 0 || t.EmptyRowRatio > 1:
		return fmt.Errorf("thresholds: empty_row_ratio must be within [0, 1], got %v", t.EmptyRowRatio)
	case t.SlowResponseMs <= 0:
		return fmt.Errorf("thresholds: slow_response_ms must be positive")
	case t.MinRowCount < 0 || t.MaxRangeDays < 0:
		return fmt.Errorf("thresholds: row and day limits must not be negative")
	}
	r := c.Recommend
	switch {
	case r.MaxItems <= 0:
		return fmt.Errorf("recommend: max_items must be positive, got %d", r.MaxItems)
	case r.SimilarityWindow <= 0:
		return fmt.Errorf("recommend: similarity_window must be positive, got %d", r.SimilarityWindow)
	case r.HistoryDays <= 0:
		return fmt.Errorf("recommend: history_days must be positive, got %d", r.HistoryDays)
	case r.RecencyDays <= 0:
		return fmt.Errorf("recommend: recency_days must be positive, got %d", r.RecencyDays)
	case r.HistoryLimit < 0:
		return fmt.Errorf("recommend: history_limit must not be negative, got %d", r.HistoryLimit)
	}
	if c.Output.Width < 0 {
		return fmt.Errorf("output: width must not be negative, got %d", c.Output.Width)
	}
	return nil
}

// InsightThresholds converts the detector settings.
func (c *Config) InsightThresholds() insight.Thresholds {
	return insight.Thresholds{
		SalesBaselineRatio: c.Thresholds.SalesBaselineRatio,
		SalesDropRatio:     c.Thresholds.SalesDropRatio,
		EmptyRowRatio:      c.Thresholds.EmptyRowRatio,
		SlowResponseMs:     c.Thresholds.SlowResponseMs,
		MinRowCount:        c.Thresholds.MinRowCount,
		MaxRangeDays:       c.Thresholds.MaxRangeDays,
	}
}

// RecommendOptions converts the strategy settings.
func (c *Config) RecommendOptions() recommend.Options {
	return recommend.Options{
		MaxItems:         c.Recommend.MaxItems,
		SimilarityWindow: c.Recommend.SimilarityWindow,
		RecencyDays:      c.Recommend.RecencyDays,
		Keywords:         c.Recommend.Keywords,
	}
}

// EngineOptions converts the service settings.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.HistoryDays = c.Recommend.HistoryDays
	opts.HistoryLimit = c.Recommend.HistoryLimit
	return opts
}

// DBPath returns the default path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigFile returns the default path to the YAML config.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

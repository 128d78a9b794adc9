// Package config provides configuration loading and defaults for reportwatch.
package config

import "time"

// DefaultConfigDir is the default location for reportwatch configuration.
const DefaultConfigDir = "~/.config/reportwatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "reportwatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. REPORTWATCH_SERVER_ADDR.
const EnvPrefix = "REPORTWATCH"

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:            "127.0.0.1:8080",
	ShutdownTimeout: 10 * time.Second,
}

// DefaultLog holds the default logging settings.
var DefaultLog = Log{
	Level:  "info",
	Format: "console",
}

// DefaultThresholds holds the default anomaly detector thresholds.
var DefaultThresholds = Thresholds{
	SalesBaselineRatio: 0.7,
	SalesDropRatio:     0.5,
	EmptyRowRatio:      0.1,
	SlowResponseMs:     10000,
	MinRowCount:        100,
	MaxRangeDays:       30,
}

// DefaultRecommend holds the default recommendation settings.
var DefaultRecommend = Recommend{
	HistoryDays:      30,
	HistoryLimit:     100,
	MaxItems:         3,
	SimilarityWindow: 5,
	RecencyDays:      7,
	Keywords:         []string{"trend", "analysis", "analiz", "comparison", "karşılaştırma"},
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

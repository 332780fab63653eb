package config

import (
	"slices"

	"github.com/mgpai22/subburn/internal/errs"
)

const maxCRF = 51

var (
	x264Presets = []string{
		"ultrafast", "superfast", "veryfast", "faster", "fast",
		"medium", "slow", "slower", "veryslow", "placebo",
	}
	logLevels  = []string{"", "debug", "info", "warn", "warning", "error"}
	logFormats = []string{"", "console", "json"}
)

// Validate checks the config, including the [style] section.
func (c *Config) Validate() error {
	const op = "config"

	if c.Paths.OutputDir == "" {
		return errs.Configuration(op, "paths.output_dir must not be empty")
	}
	if c.Encode.Codec == "" {
		return errs.Configuration(op, "encode.codec must not be empty")
	}
	if c.Encode.CRF < 0 || c.Encode.CRF > maxCRF {
		return errs.Configuration(op, "encode.crf must be within [0, %d], got %d", maxCRF, c.Encode.CRF)
	}
	if c.Encode.Preset != "" && !slices.Contains(x264Presets, c.Encode.Preset) {
		return errs.Configuration(op, "encode.preset %q is not a known preset", c.Encode.Preset)
	}
	if c.Processing.Workers < 0 {
		return errs.Configuration(op, "processing.workers must not be negative, got %d", c.Processing.Workers)
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		return errs.Configuration(op, "logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if !slices.Contains(logFormats, c.Logging.Format) {
		return errs.Configuration(op, "logging.format %q is not one of console, json", c.Logging.Format)
	}

	if _, err := c.BuildStyle(); err != nil {
		return err
	}
	return nil
}

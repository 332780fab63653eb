package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return err
	}
	if c.Paths.FontDir, err = expandPath(strings.TrimSpace(c.Paths.FontDir)); err != nil {
		return err
	}
	if c.Style.FontDir, err = expandPath(strings.TrimSpace(c.Style.FontDir)); err != nil {
		return err
	}

	c.Encode.Codec = strings.TrimSpace(c.Encode.Codec)
	c.Encode.Preset = strings.ToLower(strings.TrimSpace(c.Encode.Preset))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

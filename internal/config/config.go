package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/style"
	"github.com/mgpai22/subburn/internal/video"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	projectConfigName = "subburn.toml"
	userConfigPath    = "~/.config/subburn/config.toml"
)

// Paths contains output and font locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	FontDir   string `toml:"font_dir"`
}

// Encode contains settings for the rendered video stream.
type Encode struct {
	Codec  string `toml:"codec"`
	CRF    int    `toml:"crf"`
	Preset string `toml:"preset"`
}

type Processing struct {
	// 0 picks a count from the available CPUs
	Workers int `toml:"workers"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds every setting a render reads.
type Config struct {
	Paths      Paths        `toml:"paths"`
	Style      style.Config `toml:"style"`
	Encode     Encode       `toml:"encode"`
	Processing Processing   `toml:"processing"`
	Logging    Logging      `toml:"logging"`
}

func Default() Config {
	enc := video.DefaultEncodeOptions()
	return Config{
		Paths: Paths{
			OutputDir: "output",
		},
		Style: style.DefaultConfig(),
		Encode: Encode{
			Codec:  enc.Codec,
			CRF:    enc.CRF,
			Preset: enc.Preset,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load locates, decodes and validates a config file. An explicit path
// that does not exist is an error; when path is empty and no file is
// found the defaults are returned. The resolved path is empty in that
// case.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if resolved != "" {
		if err := cfg.decodeFile(resolved); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

func (c *Config) decodeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errs.IO("open config", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for _, e := range strict.Errors {
				keys = append(keys, strings.Join(e.Key(), "."))
			}
			return errs.Configuration("parse config", "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return errs.Configuration("parse config", "%s:%d:%d: %v", path, row, col, decodeErr)
		}
		return errs.Configuration("parse config", "%s: %v", path, err)
	}
	return nil
}

// explicit path, then ./subburn.toml, then the user config
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", errs.Configuration("config", "config file %s does not exist", expanded)
			}
			return "", errs.IO("stat config", err)
		}
		return expanded, nil
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", err
	}
	userPath, err := expandPath(userConfigPath)
	if err != nil {
		return "", err
	}

	for _, candidate := range []string{projectPath, userPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// DefaultConfigPath is where `config init` writes when given no path.
func DefaultConfigPath() (string, error) {
	return expandPath(userConfigPath)
}

// BuildStyle validates the [style] section with font_dir applied.
func (c *Config) BuildStyle() (*style.Style, error) {
	sc := c.Style
	if sc.FontDir == "" {
		sc.FontDir = c.Paths.FontDir
	}
	return sc.Build()
}

func (c *Config) EncodeOptions() video.EncodeOptions {
	return video.EncodeOptions{
		Codec:  c.Encode.Codec,
		CRF:    c.Encode.CRF,
		Preset: c.Encode.Preset,
	}
}

// CreateSample writes the sample configuration to path. Existing files
// are left alone unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errs.Configuration("config init", "%s already exists", path)
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.IO("create config directory", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return errs.IO("write sample config", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path rules (~ and relative paths) to a
// path given on the command line.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/subburn/internal/config"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/style"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subburn.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, resolved, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != "" {
		t.Fatalf("expected no config file, got %q", resolved)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) || filepath.Base(cfg.Paths.OutputDir) != "output" {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Style.FontSize != 100 || cfg.Encode.CRF != 23 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, ".config", "subburn", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	_, resolved, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
output_dir = "~/renders"
font_dir = "/fonts"

[style]
font_family = "Inter.ttf"
font_size = 48
animation_style = "fade"
position_preset = "custom"
x_position = 10
y_position = 20

[encode]
crf = 18
preset = " Slow "

[processing]
workers = 4

[logging]
level = "DEBUG"
format = "json"
`)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, resolved, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Paths.OutputDir != filepath.Join(home, "renders") {
		t.Errorf("output dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Encode.CRF != 18 || cfg.Encode.Preset != "slow" || cfg.Encode.Codec != "libx264" {
		t.Errorf("encode = %+v", cfg.Encode)
	}
	if cfg.Processing.Workers != 4 || cfg.Logging.Level != "debug" {
		t.Errorf("processing/logging = %+v %+v", cfg.Processing, cfg.Logging)
	}
	// unset keys keep their defaults
	if cfg.Style.StrokeWidth != 3 || cfg.Style.FontColor != "white" {
		t.Errorf("style defaults lost: %+v", cfg.Style)
	}

	s, err := cfg.BuildStyle()
	if err != nil {
		t.Fatalf("BuildStyle: %v", err)
	}
	if s.FontPath != filepath.Join("/fonts", "Inter.ttf") {
		t.Errorf("font path = %q", s.FontPath)
	}
	if s.Animation != style.AnimationFade || s.Preset != style.PresetCustom || s.X != 10 || s.Y != 20 {
		t.Errorf("style = %+v", s)
	}
	if enc := cfg.EncodeOptions(); enc.CRF != 18 || enc.Preset != "slow" {
		t.Errorf("encode options = %+v", enc)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[style]
font_sise = 40
`)
	_, _, err := config.Load(path)
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "font_sise") {
		t.Errorf("error should name the unknown key: %v", err)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, _, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeConfig(t, "[style\nfont_size = 1\n")
	if _, _, err := config.Load(path); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"crf too high", func(c *config.Config) { c.Encode.CRF = 52 }},
		{"negative crf", func(c *config.Config) { c.Encode.CRF = -1 }},
		{"unknown preset", func(c *config.Config) { c.Encode.Preset = "ludicrous" }},
		{"empty codec", func(c *config.Config) { c.Encode.Codec = "" }},
		{"negative workers", func(c *config.Config) { c.Processing.Workers = -2 }},
		{"unknown log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"unknown log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"empty output dir", func(c *config.Config) { c.Paths.OutputDir = "" }},
		{"invalid style", func(c *config.Config) { c.Style.FontSize = 0 }},
		{"custom without coordinates", func(c *config.Config) { c.Style.PositionPreset = "custom" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errs.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path, false); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	dec := toml.NewDecoder(strings.NewReader(string(contents)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		t.Fatalf("sample config should decode strictly: %v", err)
	}
	if cfg.Style != style.DefaultConfig() {
		t.Errorf("sample style drifted from defaults:\n got %+v\nwant %+v", cfg.Style, style.DefaultConfig())
	}

	if err := config.CreateSample(path, false); !errors.Is(err, errs.ErrConfiguration) {
		t.Errorf("expected refusal to overwrite, got %v", err)
	}
	if err := config.CreateSample(path, true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
}

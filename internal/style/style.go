// Package style validates subtitle styling parameters into an immutable Style.
package style

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/mode"
)

// text animation applied at the start and end of each entry
type Animation string

const (
	AnimationNone      Animation = "none"
	AnimationFade      Animation = "fade"
	AnimationSlideUp   Animation = "slide_up"
	AnimationSlideDown Animation = "slide_down"
	AnimationZoom      Animation = "zoom"
)

// where the text box is anchored on the frame
type Preset string

const (
	PresetBottomCenter Preset = "bottom_center"
	PresetTopCenter    Preset = "top_center"
	PresetCenter       Preset = "center"
	PresetCustom       Preset = "custom"
)

// rendering strategy tag
type Renderer string

const (
	RendererFFmpeg Renderer = "ffmpeg"
	RendererPillow Renderer = "pillow"
)

const (
	MinAnimationDuration = 0.1
	MaxAnimationDuration = 2.0
	MaxZoomStart         = 4.0
)

// Config is the raw, decodable form of a style. Build validates it.
type Config struct {
	FontFamily        string  `toml:"font_family"`
	FontDir           string  `toml:"font_dir"`
	FontSize          int     `toml:"font_size"`
	FontColor         string  `toml:"font_color"`
	StrokeWidth       int     `toml:"stroke_width"`
	StrokeColor       string  `toml:"stroke_color"`
	Shadow            bool    `toml:"shadow"`
	ShadowColor       string  `toml:"shadow_color"`
	ShadowOffset      int     `toml:"shadow_offset"`
	AnimationStyle    string  `toml:"animation_style"`
	AnimationDuration float64 `toml:"animation_duration"`
	ZoomStart         float64 `toml:"zoom_start"`
	SlideDistance     int     `toml:"slide_distance"`
	PositionPreset    string  `toml:"position_preset"`
	XPosition         *int    `toml:"x_position"`
	YPosition         *int    `toml:"y_position"`
	Renderer          string  `toml:"renderer"`
	ProcessingMode    string  `toml:"processing_mode"`
}

func DefaultConfig() Config {
	return Config{
		FontSize:          100,
		FontColor:         "white",
		StrokeWidth:       3,
		StrokeColor:       "black",
		ShadowColor:       "black@0.5",
		ShadowOffset:      2,
		AnimationStyle:    string(AnimationNone),
		AnimationDuration: 0.3,
		ZoomStart:         0.5,
		SlideDistance:     50,
		PositionPreset:    string(PresetBottomCenter),
		Renderer:          string(RendererFFmpeg),
		ProcessingMode:    string(mode.Auto),
	}
}

// Style is a validated style. Fields are read-only after Build.
type Style struct {
	FontFamily        string
	FontPath          string // empty selects the embedded default font
	FontSize          int
	FontColor         color.NRGBA
	StrokeWidth       int
	StrokeColor       color.NRGBA
	Shadow            bool
	ShadowColor       color.NRGBA
	ShadowOffset      int
	Animation         Animation
	AnimationDuration float64
	ZoomStart         float64
	SlideDistance     int
	Preset            Preset
	X, Y              int
	Renderer          Renderer
	ProcessingMode    mode.Mode
}

// Build validates the config and returns the normalized style.
func (c Config) Build() (*Style, error) {
	const op = "style"

	s := &Style{
		FontFamily:        strings.TrimSpace(c.FontFamily),
		FontSize:          c.FontSize,
		StrokeWidth:       c.StrokeWidth,
		Shadow:            c.Shadow,
		ShadowOffset:      c.ShadowOffset,
		AnimationDuration: c.AnimationDuration,
		ZoomStart:         c.ZoomStart,
		SlideDistance:     c.SlideDistance,
	}

	if s.FontFamily != "" {
		s.FontPath = s.FontFamily
		if !filepath.IsAbs(s.FontPath) && c.FontDir != "" {
			s.FontPath = filepath.Join(c.FontDir, s.FontPath)
		}
	}

	if c.FontSize <= 0 {
		return nil, errs.Configuration(op, "font_size must be positive, got %d", c.FontSize)
	}
	if c.StrokeWidth < 0 {
		return nil, errs.Configuration(op, "stroke_width must not be negative, got %d", c.StrokeWidth)
	}
	if c.ShadowOffset < 0 {
		return nil, errs.Configuration(op, "shadow_offset must not be negative, got %d", c.ShadowOffset)
	}
	if c.SlideDistance < 0 {
		return nil, errs.Configuration(op, "slide_distance must not be negative, got %d", c.SlideDistance)
	}

	var err error
	if s.FontColor, err = ParseColor(c.FontColor); err != nil {
		return nil, errs.Configuration(op, "font_color: %v", err)
	}
	if s.StrokeColor, err = ParseColor(c.StrokeColor); err != nil {
		return nil, errs.Configuration(op, "stroke_color: %v", err)
	}
	if s.ShadowColor, err = ParseColor(c.ShadowColor); err != nil {
		return nil, errs.Configuration(op, "shadow_color: %v", err)
	}

	if s.Animation, err = ParseAnimation(c.AnimationStyle); err != nil {
		return nil, errs.Configuration(op, "%v", err)
	}
	d := c.AnimationDuration
	if math.IsNaN(d) || d < MinAnimationDuration || d > MaxAnimationDuration {
		return nil, errs.Configuration(op,
			"animation_duration must be within [%.1f, %.1f], got %v",
			MinAnimationDuration, MaxAnimationDuration, d)
	}
	z := c.ZoomStart
	if math.IsNaN(z) || z <= 0 || z > MaxZoomStart {
		return nil, errs.Configuration(op, "zoom_start must be within (0, %.0f], got %v", MaxZoomStart, z)
	}

	if s.Preset, err = ParsePreset(c.PositionPreset); err != nil {
		return nil, errs.Configuration(op, "%v", err)
	}
	if s.Preset == PresetCustom {
		if c.XPosition == nil || c.YPosition == nil {
			return nil, errs.Configuration(op, "custom position requires both x_position and y_position")
		}
		s.X, s.Y = *c.XPosition, *c.YPosition
	}

	if s.Renderer, err = ParseRenderer(c.Renderer); err != nil {
		return nil, errs.Configuration(op, "%v", err)
	}

	if s.ProcessingMode, err = mode.Parse(c.ProcessingMode); err != nil {
		return nil, errs.Configuration(op, "%v", err)
	}

	return s, nil
}

func ParseAnimation(s string) (Animation, error) {
	switch a := Animation(normalize(s)); a {
	case "":
		return AnimationNone, nil
	case AnimationNone, AnimationFade, AnimationSlideUp, AnimationSlideDown, AnimationZoom:
		return a, nil
	default:
		return "", errUnknown("animation_style", s)
	}
}

func ParsePreset(s string) (Preset, error) {
	switch p := Preset(normalize(s)); p {
	case "":
		return PresetBottomCenter, nil
	case PresetBottomCenter, PresetTopCenter, PresetCenter, PresetCustom:
		return p, nil
	default:
		return "", errUnknown("position_preset", s)
	}
}

// accepts "frame" as an alias for the pillow strategy
func ParseRenderer(s string) (Renderer, error) {
	switch r := Renderer(normalize(s)); r {
	case "":
		return RendererFFmpeg, nil
	case RendererFFmpeg, RendererPillow:
		return r, nil
	case "frame":
		return RendererPillow, nil
	default:
		return "", errUnknown("renderer", s)
	}
}

// With returns a copy of s using renderer r.
func (s *Style) With(r Renderer) *Style {
	c := *s
	c.Renderer = r
	return &c
}

// Animated reports whether entries change appearance over time.
func (s *Style) Animated() bool {
	return s.Animation != AnimationNone
}

func errUnknown(field, v string) error {
	return fmt.Errorf("unknown %s %q", field, v)
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}

// Package effect maps an alignment entry and a playback time to the visual
// state of its text at that instant.
package effect

import (
	"image"
	"image/color"
	"math"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/style"
)

// Instruction describes how to draw one entry at one instant.
type Instruction struct {
	Opacity      float64 // 0..1
	XOffset      float64
	YOffset      float64 // positive moves down
	Scale        float64 // about the text box center
	Color        color.NRGBA
	StrokeColor  color.NRGBA
	StrokeWidth  int
	Shadow       bool
	ShadowColor  color.NRGBA
	ShadowOffset int
}

// Ramp is the length of the in and out transitions of e. Ramps never
// exceed half the entry so they meet at the midpoint at the latest.
func Ramp(e alignment.Entry, d float64) float64 {
	return math.Min(d, e.Length()/2)
}

// Progress is 0 at the entry edges and 1 once the in ramp has finished
// and until the out ramp begins.
func Progress(e alignment.Entry, t, d float64) float64 {
	r := Ramp(e, d)
	if r <= 0 {
		return 1
	}
	p := math.Min(t-e.Start, e.End-t) / r
	return math.Max(0, math.Min(1, p))
}

// Compile returns the instruction for e at time t, or false when e is
// not visible at t.
func Compile(e alignment.Entry, t float64, s *style.Style) (Instruction, bool) {
	if !e.Visible(t) {
		return Instruction{}, false
	}

	in := Instruction{
		Opacity:      1,
		Scale:        1,
		Color:        s.FontColor,
		StrokeColor:  s.StrokeColor,
		StrokeWidth:  s.StrokeWidth,
		Shadow:       s.Shadow,
		ShadowColor:  s.ShadowColor,
		ShadowOffset: s.ShadowOffset,
	}

	if !s.Animated() {
		return in, true
	}

	p := Progress(e, t, s.AnimationDuration)
	switch s.Animation {
	case style.AnimationFade:
		in.Opacity = p
	case style.AnimationSlideUp:
		in.YOffset = float64(s.SlideDistance) * (1 - p)
	case style.AnimationSlideDown:
		in.YOffset = -float64(s.SlideDistance) * (1 - p)
	case style.AnimationZoom:
		in.Scale = s.ZoomStart + (1-s.ZoomStart)*p
	}
	return in, true
}

// Anchor returns the fractional frame coordinates a preset centers the
// text box on. Custom positions have no anchor.
func Anchor(p style.Preset) (fx, fy float64, ok bool) {
	switch p {
	case style.PresetBottomCenter:
		return 0.5, 0.85, true
	case style.PresetTopCenter:
		return 0.5, 0.15, true
	case style.PresetCenter:
		return 0.5, 0.5, true
	default:
		return 0, 0, false
	}
}

// Place returns the top-left corner of a textW x textH box on a
// frameW x frameH frame, before animation offsets.
func Place(s *style.Style, frameW, frameH, textW, textH int) image.Point {
	fx, fy, ok := Anchor(s.Preset)
	if !ok {
		return image.Pt(s.X, s.Y)
	}
	return image.Pt(
		int(math.Round(float64(frameW)*fx-float64(textW)/2)),
		int(math.Round(float64(frameH)*fy-float64(textH)/2)),
	)
}

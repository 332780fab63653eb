package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/style"
)

// style overrides; only flags the user set are applied
type styleFlags struct {
	font              string
	fontDir           string
	fontSize          int
	fontColor         string
	strokeWidth       int
	strokeColor       string
	shadow            bool
	shadowColor       string
	shadowOffset      int
	animation         string
	animationDuration float64
	zoomStart         float64
	slideDistance     int
	position          string
	x, y              int
	renderer          string
}

func addStyleFlags(cmd *cobra.Command, f *styleFlags) {
	def := style.DefaultConfig()
	flags := cmd.Flags()

	flags.StringVar(&f.font, "font", "", "Font file (default: built-in Go Regular)")
	flags.StringVar(&f.fontDir, "font-dir", "", "Directory relative font paths are resolved against")
	flags.IntVar(&f.fontSize, "font-size", def.FontSize, "Font size in pixels")
	flags.StringVar(&f.fontColor, "font-color", def.FontColor, "Text color (name, #RRGGBB[AA], optional @alpha)")
	flags.IntVar(&f.strokeWidth, "stroke-width", def.StrokeWidth, "Outline width in pixels")
	flags.StringVar(&f.strokeColor, "stroke-color", def.StrokeColor, "Outline color")
	flags.BoolVar(&f.shadow, "shadow", def.Shadow, "Draw a drop shadow")
	flags.StringVar(&f.shadowColor, "shadow-color", def.ShadowColor, "Shadow color")
	flags.IntVar(&f.shadowOffset, "shadow-offset", def.ShadowOffset, "Shadow offset in pixels")
	flags.StringVar(&f.animation, "animation", def.AnimationStyle, "Animation (none, fade, slide_up, slide_down, zoom)")
	flags.Float64Var(&f.animationDuration, "animation-duration", def.AnimationDuration, "Animation ramp in seconds (0.1-2.0)")
	flags.Float64Var(&f.zoomStart, "zoom-start", def.ZoomStart, "Starting scale for zoom")
	flags.IntVar(&f.slideDistance, "slide-distance", def.SlideDistance, "Slide distance in pixels")
	flags.StringVar(&f.position, "position", def.PositionPreset, "Position (bottom_center, top_center, center, custom)")
	flags.IntVar(&f.x, "x", 0, "Left edge for --position custom")
	flags.IntVar(&f.y, "y", 0, "Top edge for --position custom")
	flags.StringVar(&f.renderer, "renderer", def.Renderer, "Renderer (ffmpeg, pillow)")
}

// apply copies the flags the user set onto sc
func (f *styleFlags) apply(cmd *cobra.Command, sc *style.Config) {
	changed := cmd.Flags().Changed

	if changed("font") {
		sc.FontFamily = f.font
	}
	if changed("font-dir") {
		sc.FontDir = f.fontDir
	}
	if changed("font-size") {
		sc.FontSize = f.fontSize
	}
	if changed("font-color") {
		sc.FontColor = f.fontColor
	}
	if changed("stroke-width") {
		sc.StrokeWidth = f.strokeWidth
	}
	if changed("stroke-color") {
		sc.StrokeColor = f.strokeColor
	}
	if changed("shadow") {
		sc.Shadow = f.shadow
	}
	if changed("shadow-color") {
		sc.ShadowColor = f.shadowColor
	}
	if changed("shadow-offset") {
		sc.ShadowOffset = f.shadowOffset
	}
	if changed("animation") {
		sc.AnimationStyle = f.animation
	}
	if changed("animation-duration") {
		sc.AnimationDuration = f.animationDuration
	}
	if changed("zoom-start") {
		sc.ZoomStart = f.zoomStart
	}
	if changed("slide-distance") {
		sc.SlideDistance = f.slideDistance
	}
	if changed("position") {
		sc.PositionPreset = f.position
	}
	if changed("x") {
		x := f.x
		sc.XPosition = &x
	}
	if changed("y") {
		y := f.y
		sc.YPosition = &y
	}
	if changed("renderer") {
		sc.Renderer = f.renderer
	}
}

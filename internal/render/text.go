package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// text rendered once per entry and reused across frames
type textLayer struct {
	img *image.NRGBA
	// size of the text itself, without stroke padding or shadow
	textW, textH int
	// distance from the layer origin to the text box origin
	pad int
}

// the 8 compass directions used to build a stroke outline
var strokeDirections = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

type layerStyle struct {
	fill         color.NRGBA
	stroke       color.NRGBA
	strokeWidth  int
	shadow       bool
	shadowColor  color.NRGBA
	shadowOffset int
}

func drawTextLayer(face font.Face, text string, ls layerStyle) textLayer {
	lines := strings.Split(text, "\n")
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = ascent + metrics.Descent.Ceil()
	}

	widths := make([]int, len(lines))
	textW := 1
	for i, line := range lines {
		widths[i] = font.MeasureString(face, line).Ceil()
		textW = max(textW, widths[i])
	}
	textH := lineHeight*(len(lines)-1) + ascent + metrics.Descent.Ceil()
	textH = max(textH, 1)

	pad := ls.strokeWidth
	shadow := 0
	if ls.shadow {
		shadow = ls.shadowOffset
	}
	maskW, maskH := textW+2*pad, textH+2*pad

	// glyph coverage, lines centered within the text box
	mask := image.NewAlpha(image.Rect(0, 0, maskW, maskH))
	d := &font.Drawer{Dst: mask, Src: image.Opaque, Face: face}
	for i, line := range lines {
		d.Dot = fixed.P(pad+(textW-widths[i])/2, pad+ascent+i*lineHeight)
		d.DrawString(line)
	}

	layer := image.NewNRGBA(image.Rect(0, 0, maskW+shadow, maskH+shadow))
	stamp := func(c color.NRGBA, offset image.Point) {
		r := mask.Bounds().Add(offset)
		draw.DrawMask(layer, r, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
	}

	if ls.shadow {
		stamp(ls.shadowColor, image.Pt(shadow, shadow))
	}
	for radius := 1; radius <= ls.strokeWidth; radius++ {
		for _, dir := range strokeDirections {
			stamp(ls.stroke, dir.Mul(radius))
		}
	}
	stamp(ls.fill, image.Point{})

	return textLayer{img: layer, textW: textW, textH: textH, pad: pad}
}

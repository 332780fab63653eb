package render

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/effect"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/style"
)

const maxCachedLayers = 256

// FrameRenderer draws subtitles onto individual frames. It holds a font
// face and a layer cache, so each goroutine needs its own.
type FrameRenderer struct {
	style  *style.Style
	face   font.Face
	layers map[string]textLayer
}

// NewFrameRenderer creates a renderer for s. f may be shared between
// renderers; nil loads the font named by the style.
func NewFrameRenderer(s *style.Style, f *opentype.Font) (*FrameRenderer, error) {
	if f == nil {
		var err error
		if f, err = LoadFont(s.FontPath); err != nil {
			return nil, errs.Render("load font", err)
		}
	}
	face, err := newFace(f, s.FontSize)
	if err != nil {
		return nil, errs.Render("load font", err)
	}
	return &FrameRenderer{
		style:  s,
		face:   face,
		layers: make(map[string]textLayer),
	}, nil
}

// RenderFrame returns a copy of frame with every entry of active that is
// visible at t drawn on top, later-starting entries above earlier ones.
// frame itself is never modified.
func (r *FrameRenderer) RenderFrame(
	frame image.Image,
	active []alignment.Entry,
	t float64,
) (*image.NRGBA, error) {
	if frame == nil {
		return nil, errs.Renderf("render frame", "nil frame")
	}
	if frame.Bounds().Empty() {
		return nil, errs.Renderf("render frame", "empty frame")
	}

	out := imaging.Clone(frame)
	if len(active) == 0 {
		return out, nil
	}

	ordered := make([]alignment.Entry, len(active))
	copy(ordered, active)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	for _, e := range ordered {
		in, ok := effect.Compile(e, t, r.style)
		if !ok || in.Opacity <= 0 {
			continue
		}
		out = r.composite(out, e.Text, in)
	}
	return out, nil
}

func (r *FrameRenderer) composite(dst *image.NRGBA, text string, in effect.Instruction) *image.NRGBA {
	layer := r.layer(text, in)
	b := dst.Bounds()

	box := effect.Place(r.style, b.Dx(), b.Dy(), layer.textW, layer.textH)
	// layer origin before scaling, then offset by the animation
	x := float64(box.X-layer.pad) + in.XOffset
	y := float64(box.Y-layer.pad) + in.YOffset

	img := layer.img
	if in.Scale != 1 {
		lw, lh := img.Bounds().Dx(), img.Bounds().Dy()
		nw := int(math.Round(float64(lw) * in.Scale))
		nh := int(math.Round(float64(lh) * in.Scale))
		if nw < 1 || nh < 1 {
			return dst
		}
		img = imaging.Resize(img, nw, nh, imaging.Lanczos)
		// scale about the layer center
		x += float64(lw-nw) / 2
		y += float64(lh-nh) / 2
	}

	pos := image.Pt(b.Min.X+int(math.Round(x)), b.Min.Y+int(math.Round(y)))
	return imaging.Overlay(dst, img, pos, in.Opacity)
}

func (r *FrameRenderer) layer(text string, in effect.Instruction) textLayer {
	if l, ok := r.layers[text]; ok {
		return l
	}
	if len(r.layers) >= maxCachedLayers {
		clear(r.layers)
	}
	l := drawTextLayer(r.face, text, layerStyle{
		fill:         in.Color,
		stroke:       in.StrokeColor,
		strokeWidth:  in.StrokeWidth,
		shadow:       in.Shadow,
		shadowColor:  in.ShadowColor,
		shadowOffset: in.ShadowOffset,
	})
	r.layers[text] = l
	return l
}

package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/effect"
	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/style"
)

const (
	defaultPlayResX = 1920
	defaultPlayResY = 1080
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct {
	// places cues at the preset's anchor when set
	Style *style.Style
}

// Advanced SubStation Alpha format carrying the full style, positions
// and animations
type ASSWriter struct {
	Title string
	Style *style.Style
	// script resolution, 1920x1080 when zero
	Width, Height int
}

// WriteFile writes seq to path with w, creating the directory.
func WriteFile(path string, seq *alignment.Sequence, w Writer) error {
	const op = "write subtitles"

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.IO(op, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return errs.IO(op, err)
	}

	buf := bufio.NewWriter(file)
	if err := w.Write(buf, seq); err != nil {
		_ = file.Close()
		return errs.IO(op, err)
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return errs.IO(op, err)
	}
	if err := file.Close(); err != nil {
		return errs.IO(op, err)
	}
	return nil
}

func (w *SRTWriter) Write(out io.Writer, seq *alignment.Sequence) error {
	var sb strings.Builder
	for i, entry := range seq.Entries() {
		// index (1-based)
		fmt.Fprintf(&sb, "%d\n", i+1)

		// timestamps: 00:00:00,000 --> 00:00:00,000
		fmt.Fprintf(&sb, "%s --> %s\n",
			formatSRTTime(entry.Start),
			formatSRTTime(entry.End))

		sb.WriteString(entry.Text)
		sb.WriteString("\n\n")
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

var vttEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func (w *VTTWriter) Write(out io.Writer, seq *alignment.Sequence) error {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	settings := w.cueSettings()
	for i, entry := range seq.Entries() {
		// optional cue identifier
		fmt.Fprintf(&sb, "%d\n", i+1)

		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(&sb, "%s --> %s%s\n",
			formatVTTTime(entry.Start),
			formatVTTTime(entry.End),
			settings)

		sb.WriteString(vttEscaper.Replace(entry.Text))
		sb.WriteString("\n\n")
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

// cue box centred on the preset anchor
func (w *VTTWriter) cueSettings() string {
	if w.Style == nil {
		return ""
	}
	fx, fy, ok := effect.Anchor(w.Style.Preset)
	if !ok {
		return ""
	}
	return fmt.Sprintf(" line:%s%%,center position:%s%% align:center",
		percent(fy), percent(fx))
}

func percent(f float64) string {
	return fmt.Sprintf("%g", math.Round(f*1000)/10)
}

func (w *ASSWriter) Write(out io.Writer, seq *alignment.Sequence) error {
	s := w.Style
	if s == nil {
		return fmt.Errorf("ass output needs a style")
	}
	width, height := w.Width, w.Height
	if width <= 0 || height <= 0 {
		width, height = defaultPlayResX, defaultPlayResY
	}

	var sb strings.Builder

	// script info section
	sb.WriteString("[Script Info]\n")
	fmt.Fprintf(&sb, "Title: %s\n", w.Title)
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("WrapStyle: 0\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", width)
	fmt.Fprintf(&sb, "PlayResY: %d\n\n", height)

	// v4+ styles section
	shadow := 0
	if s.Shadow {
		shadow = s.ShadowOffset
	}
	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&sb, "Style: Default,%s,%d,%s,&H000000FF,%s,%s,0,0,0,0,100,100,0,0,1,%d,%d,%d,0,0,0,1\n\n",
		fontName(s),
		s.FontSize,
		style.ASSColor(s.FontColor),
		style.ASSColor(s.StrokeColor),
		style.ASSColor(s.ShadowColor),
		s.StrokeWidth,
		shadow,
		assAlignment(s),
	)

	// events section
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	x, y := assPosition(s, width, height)
	for _, entry := range seq.Entries() {
		for _, d := range dialogues(entry, s, x, y) {
			fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s%s\n",
				formatASSTime(d.start),
				formatASSTime(d.end),
				d.tags,
				escapeASSText(entry.Text))
		}
	}

	_, err := io.WriteString(out, sb.String())
	return err
}

type dialogue struct {
	start, end float64
	tags       string
}

// one dialogue line per entry, three for slides (in, hold, out) since
// \move only runs once per line
func dialogues(e alignment.Entry, s *style.Style, x, y int) []dialogue {
	at := fmt.Sprintf(`\an%d`, assAlignment(s))
	pos := fmt.Sprintf(`\pos(%d,%d)`, x, y)
	r := effect.Ramp(e, s.AnimationDuration)
	rampMs := int(math.Round(r * 1000))

	switch s.Animation {
	case style.AnimationFade:
		return []dialogue{{e.Start, e.End, fmt.Sprintf(`{%s%s\fad(%d,%d)}`, at, pos, rampMs, rampMs)}}

	case style.AnimationZoom:
		z := num(s.ZoomStart * 100)
		lengthMs := int(math.Round(e.Length() * 1000))
		return []dialogue{{e.Start, e.End, fmt.Sprintf(
			`{%s%s\fscx%s\fscy%s\t(0,%d,\fscx100\fscy100)\t(%d,%d,\fscx%s\fscy%s)}`,
			at, pos, z, z, rampMs, lengthMs-rampMs, lengthMs, z, z)}}

	case style.AnimationSlideUp, style.AnimationSlideDown:
		if r <= 0 {
			break
		}
		dy := s.SlideDistance
		if s.Animation == style.AnimationSlideDown {
			dy = -dy
		}
		in := dialogue{e.Start, e.Start + r, fmt.Sprintf(`{%s\move(%d,%d,%d,%d)}`, at, x, y+dy, x, y)}
		out := dialogue{e.End - r, e.End, fmt.Sprintf(`{%s\move(%d,%d,%d,%d)}`, at, x, y, x, y+dy)}
		if e.End-r > e.Start+r {
			return []dialogue{in, {e.Start + r, e.End - r, "{" + at + pos + "}"}, out}
		}
		return []dialogue{in, out}
	}

	return []dialogue{{e.Start, e.End, "{" + at + pos + "}"}}
}

// presets centre the text on their anchor, custom positions are top-left
func assAlignment(s *style.Style) int {
	if s.Preset == style.PresetCustom {
		return 7
	}
	return 5
}

func assPosition(s *style.Style, width, height int) (int, int) {
	fx, fy, ok := effect.Anchor(s.Preset)
	if !ok {
		return s.X, s.Y
	}
	return int(math.Round(fx * float64(width))), int(math.Round(fy * float64(height)))
}

// family name from a font path, the built-in font otherwise
func fontName(s *style.Style) string {
	if s.FontPath == "" {
		return "Go"
	}
	base := filepath.Base(s.FontPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func num(f float64) string {
	return fmt.Sprintf("%g", math.Round(f*100)/100)
}

func formatSRTTime(sec float64) string {
	h, m, s, ms := clock(sec)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTime(sec float64) string {
	h, m, s, ms := clock(sec)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatASSTime(sec float64) string {
	cs := int64(math.Round(math.Max(sec, 0) * 100))
	return fmt.Sprintf("%d:%02d:%02d.%02d", cs/360000, cs/6000%60, cs/100%60, cs%100)
}

// splits seconds into h, m, s, ms, rounded to the millisecond
func clock(sec float64) (int64, int64, int64, int64) {
	ms := int64(math.Round(math.Max(sec, 0) * 1000))
	return ms / 3600000, ms / 60000 % 60, ms / 1000 % 60, ms % 1000
}

var assEscaper = strings.NewReplacer("\n", `\N`, "{", `\{`, "}", `\}`)

func escapeASSText(text string) string {
	return assEscaper.Replace(text)
}

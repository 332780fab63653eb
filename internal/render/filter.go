package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mgpai22/subburn/internal/alignment"
	"github.com/mgpai22/subburn/internal/effect"
	"github.com/mgpai22/subburn/internal/style"
)

// characters special to the option parser of a single filter
var optionEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
)

// characters special to the filtergraph parser
var graphEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`[`, `\[`,
	`]`, `\]`,
	`,`, `\,`,
	`;`, `\;`,
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FilterGraph returns a drawtext chain drawing every entry of seq,
// suitable for -vf. fontFile must name a font on disk.
func FilterGraph(seq *alignment.Sequence, s *style.Style, fontFile string) string {
	stages := make([]string, 0, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		stages = append(stages, drawtext(seq.At(i), s, fontFile))
	}
	return strings.Join(stages, ",")
}

// one drawtext stage, escaped for use inside a filtergraph
func drawtext(e alignment.Entry, s *style.Style, fontFile string) string {
	x, y := positionExprs(s)

	var alpha string
	if r := effect.Ramp(e, s.AnimationDuration); r > 0 {
		p := progressExpr(e, r)
		switch s.Animation {
		case style.AnimationFade:
			alpha = p
		case style.AnimationSlideUp:
			y = fmt.Sprintf("(%s)+%d*(1-%s)", y, s.SlideDistance, p)
		case style.AnimationSlideDown:
			y = fmt.Sprintf("(%s)-%d*(1-%s)", y, s.SlideDistance, p)
		}
	}

	opts := []string{
		"fontfile=" + optionEscaper.Replace(fontFile),
		"expansion=none",
		"text=" + optionEscaper.Replace(e.Text),
		"fontsize=" + strconv.Itoa(s.FontSize),
		"fontcolor=" + style.FFmpegColor(s.FontColor),
		"borderw=" + strconv.Itoa(s.StrokeWidth),
		"bordercolor=" + style.FFmpegColor(s.StrokeColor),
	}
	if s.Shadow {
		opts = append(opts,
			"shadowx="+strconv.Itoa(s.ShadowOffset),
			"shadowy="+strconv.Itoa(s.ShadowOffset),
			"shadowcolor="+style.FFmpegColor(s.ShadowColor),
		)
	}
	opts = append(opts,
		"x="+optionEscaper.Replace(x),
		"y="+optionEscaper.Replace(y),
	)
	if alpha != "" {
		opts = append(opts, "alpha="+optionEscaper.Replace(alpha))
	}
	opts = append(opts, fmt.Sprintf("enable=gte(t,%s)*lt(t,%s)", num(e.Start), num(e.End)))

	return "drawtext=" + graphEscaper.Replace(strings.Join(opts, ":"))
}

// top-left corner of the text box as drawtext expressions
func positionExprs(s *style.Style) (string, string) {
	fx, fy, ok := effect.Anchor(s.Preset)
	if !ok {
		return strconv.Itoa(s.X), strconv.Itoa(s.Y)
	}
	return fmt.Sprintf("w*%s-text_w/2", num(fx)), fmt.Sprintf("h*%s-text_h/2", num(fy))
}

// closed form of effect.Progress as a function of t
func progressExpr(e alignment.Entry, ramp float64) string {
	r := num(ramp)
	return fmt.Sprintf("clip(min((t-%s)/%s,(%s-t)/%s),0,1)", num(e.Start), r, num(e.End), r)
}

package cli

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/errs"
	"github.com/mgpai22/subburn/internal/style"
)

// runs the command line in a clean home directory
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, s, want string) {
	t.Helper()
	if !strings.Contains(s, want) {
		t.Fatalf("expected output to contain %q:\n%s", want, s)
	}
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const wordsJSON = `[
  {"start": 0.0, "end": 0.4, "text": "Hello"},
  {"start": 0.4, "end": 0.9, "text": "world."},
  {"start": 1.0, "end": 1.5, "text": "Again"}
]`

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "subburn.toml")

	out, err := runCLI(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	out, err = runCLI(t, "config", "validate", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "bottom_center")

	if _, err := runCLI(t, "config", "init", target); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
	if _, err := runCLI(t, "config", "init", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.toml", "[style]\nfont_size = -4\n")
	words := writeFile(t, dir, "words.json", wordsJSON)

	if _, err := runCLI(t, "--config", path, "inspect", words); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	words := writeFile(t, dir, "words.json", wordsJSON)

	out, err := runCLI(t, "inspect", words)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "Hello")
	requireContains(t, out, "1.500")
	requireContains(t, out, "Suggested mode")
	requireContains(t, out, "lite")

	long := writeFile(t, dir, "long.srt", "1\n00:00:00,000 --> 00:00:01,000\nstart\n\n2\n00:04:59,000 --> 00:05:00,000\nend\n")
	out, err = runCLI(t, "inspect", long, "--limit", "1")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "backend")
	requireContains(t, out, "... 1 more")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	words := writeFile(t, dir, "words.json", wordsJSON)

	if _, err := runCLI(t, "export", words, "-f", "srt", "--group"); err != nil {
		t.Fatalf("export srt: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "words.srt"))
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	requireContains(t, string(data), "Hello world.\n")
	requireContains(t, string(data), "00:00:01,000 --> 00:00:01,500\nAgain")

	assPath := filepath.Join(dir, "styled.ass")
	if _, err := runCLI(t, "export", words, "-f", "ass", "-o", assPath, "--animation", "fade", "--width", "1280", "--height", "720"); err != nil {
		t.Fatalf("export ass: %v", err)
	}
	data, err = os.ReadFile(assPath)
	if err != nil {
		t.Fatalf("read ass: %v", err)
	}
	requireContains(t, string(data), "PlayResX: 1280")
	requireContains(t, string(data), `{\an5\pos(640,612)\fad(200,200)}Hello`)

	vttPath := filepath.Join(dir, "inferred.vtt")
	if _, err := runCLI(t, "export", words, "-o", vttPath); err != nil {
		t.Fatalf("export vtt: %v", err)
	}
	data, err = os.ReadFile(vttPath)
	if err != nil {
		t.Fatalf("read vtt: %v", err)
	}
	requireContains(t, string(data), "WEBVTT")

	if _, err := runCLI(t, "export", words, "-f", "docx"); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func writeFrames(t *testing.T, dir string, n int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := range n {
		img := imaging.New(64, 48, color.NRGBA{R: uint8(i * 20), G: 40, B: 90, A: 255})
		if err := imaging.Save(img, filepath.Join(dir, "f"+string(rune('a'+i))+".png")); err != nil {
			t.Fatalf("save frame: %v", err)
		}
	}
}

func TestRenderFramesDir(t *testing.T) {
	dir := t.TempDir()
	frames := filepath.Join(dir, "frames")
	writeFrames(t, frames, 6)
	words := writeFile(t, dir, "words.json", wordsJSON)
	outDir := filepath.Join(dir, "rendered")
	metricsFile := filepath.Join(dir, "subburn.prom")

	out, err := runCLI(t, "render",
		"--frames-dir", frames,
		"--fps", "30",
		"-a", words,
		"--font-size", "12",
		"-o", outDir,
		"--metrics-file", metricsFile,
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	requireContains(t, out, "lite")
	requireContains(t, out, outDir)

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("got %d output frames, want 6", len(entries))
	}
	first, err := imaging.Open(filepath.Join(outDir, "frame_000000.png"))
	if err != nil {
		t.Fatalf("open frame: %v", err)
	}
	if first.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Errorf("frame bounds = %v", first.Bounds())
	}

	prom, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	requireContains(t, string(prom), "subburn_jobs_total")
}

func TestRenderInputValidation(t *testing.T) {
	dir := t.TempDir()
	words := writeFile(t, dir, "words.json", wordsJSON)
	clip := writeFile(t, dir, "clip.mp4", "")
	notes := writeFile(t, dir, "notes.txt", "")

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"no input", []string{"render", "-a", words}, errs.ErrConfiguration},
		{"both inputs", []string{"render", clip, "--frames-dir", dir, "-a", words}, errs.ErrConfiguration},
		{"not a video", []string{"render", notes, "-a", words}, errs.ErrConfiguration},
		{"missing video", []string{"render", filepath.Join(dir, "nope.mp4"), "-a", words}, errs.ErrIO},
		{"bad style", []string{"render", clip, "-a", words, "--animation", "spin"}, errs.ErrConfiguration},
		{"bad mode", []string{"render", clip, "-a", words, "--mode", "turbo"}, errs.ErrConfiguration},
		{"frames dir without images", []string{"render", "--frames-dir", dir, "-a", words}, errs.ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); !errors.Is(err, tt.target) {
				t.Fatalf("got %v, want %v", err, tt.target)
			}
		})
	}
}

func TestRenderDryRun(t *testing.T) {
	dir := t.TempDir()
	words := writeFile(t, dir, "words.json", wordsJSON)
	clip := writeFile(t, dir, "clip.mp4", "")

	out, err := runCLI(t, "render", clip, "-a", words, "--dry-run", "--animation", "fade", "-o", filepath.Join(dir, "out.mp4"))
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "ffmpeg ")
	requireContains(t, out, "drawtext")
	requireContains(t, out, "out.mp4")
	if _, err := os.Stat(filepath.Join(dir, "out.mp4")); !os.IsNotExist(err) {
		t.Error("a dry run must not write output")
	}

	out, err = runCLI(t, "render", clip, "-a", words, "--dry-run", "--animation", "zoom")
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "Fallback")
	requireContains(t, out, "rendered in-process")
}

func TestStyleFlagsApplyOnlyChanged(t *testing.T) {
	var f styleFlags
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	addStyleFlags(cmd, &f)
	if err := cmd.ParseFlags([]string{"--font-size", "40", "--position", "custom", "--x", "5", "--y", "7"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	sc := style.DefaultConfig()
	sc.FontColor = "yellow"
	f.apply(cmd, &sc)

	if sc.FontSize != 40 || sc.PositionPreset != "custom" {
		t.Errorf("changed flags not applied: %+v", sc)
	}
	if sc.XPosition == nil || *sc.XPosition != 5 || sc.YPosition == nil || *sc.YPosition != 7 {
		t.Errorf("custom position not applied: %+v", sc)
	}
	if sc.FontColor != "yellow" {
		t.Errorf("unset flag overrode config value: %q", sc.FontColor)
	}
}

func TestShellJoin(t *testing.T) {
	got := shellJoin([]string{"-i", "my clip.mp4", "-vf", "drawtext=text='it'", "out.mp4"})
	want := `-i 'my clip.mp4' -vf 'drawtext=text='\''it'\''' out.mp4`
	if got != want {
		t.Errorf("shellJoin = %s\nwant %s", got, want)
	}
}

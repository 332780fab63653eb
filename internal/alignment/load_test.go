package alignment

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Entry
		wantErr bool
	}{
		{
			name:    "whisper words",
			content: `[{"value":"hello","start":0,"end":1},{"value":"world","start":1,"end":2.5}]`,
			want:    []Entry{{0, 1, "hello"}, {1, 2.5, "world"}},
		},
		{
			name:    "text key",
			content: `[{"text":"hi","start":0.5,"end":1}]`,
			want:    []Entry{{0.5, 1, "hi"}},
		},
		{
			name:    "wrapped words",
			content: `{"words":[{"value":"b","start":2,"end":3},{"value":"a","start":0,"end":1}]}`,
			want:    []Entry{{0, 1, "a"}, {2, 3, "b"}},
		},
		{
			name:    "wrapped segments",
			content: `{"segments":[{"text":"seg","start":0,"end":4}]}`,
			want:    []Entry{{0, 4, "seg"}},
		},
		{
			name:    "missing end",
			content: `[{"value":"x","start":0}]`,
			wantErr: true,
		},
		{
			name:    "missing text",
			content: `[{"start":0,"end":1}]`,
			wantErr: true,
		},
		{
			name:    "end before start",
			content: `[{"value":"x","start":2,"end":1}]`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: `hello`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := Read(strings.NewReader(tt.content), FormatJSON)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got := seq.Entries()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadSRT(t *testing.T) {
	content := "\ufeff1\n00:00:01,000 --> 00:00:04,000\nHello, world!\n\n" +
		"2\n00:00:05,500 --> 00:00:08,200\nThis is a test.\nWith multiple lines.\n\n" +
		"3\n01:00:10,000 --> 01:00:12,500\nFinal subtitle.\n"
	path := filepath.Join(t.TempDir(), "test.srt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	seq, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seq.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", seq.Len())
	}

	first := seq.At(0)
	if first.Start != 1 || first.End != 4 || first.Text != "Hello, world!" {
		t.Errorf("entry 0 = %+v", first)
	}
	if got := seq.At(1).Text; got != "This is a test.\nWith multiple lines." {
		t.Errorf("entry 1 text = %q", got)
	}
	if got := seq.At(1).Start; got != 5.5 {
		t.Errorf("entry 1 start = %v, want 5.5", got)
	}
	if got := seq.At(2).Start; got != 3610 {
		t.Errorf("entry 2 start = %v, want 3610", got)
	}
}

func TestReadSRTBadTimestamp(t *testing.T) {
	content := "1\nnot a timestamp\nText\n"
	if _, err := Read(strings.NewReader(content), FormatSRT); err == nil {
		t.Error("expected error for malformed SRT")
	}
}

func TestLoadVTT(t *testing.T) {
	content := `WEBVTT
Kind: captions

NOTE this is a comment
spanning lines

STYLE
::cue { color: red }

intro
00:00:01.000 --> 00:00:02.500
First cue

00:03.000 --> 00:04.250 align:start
Short timestamp
second line
`
	path := filepath.Join(t.TempDir(), "test.vtt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	seq, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if seq.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", seq.Len(), seq.Entries())
	}
	if e := seq.At(0); e.Start != 1 || e.End != 2.5 || e.Text != "First cue" {
		t.Errorf("entry 0 = %+v", e)
	}
	if e := seq.At(1); e.Start != 3 || e.End != 4.25 || e.Text != "Short timestamp\nsecond line" {
		t.Errorf("entry 1 = %+v", e)
	}
}

func TestReadVTTMissingHeader(t *testing.T) {
	if _, err := Read(strings.NewReader("00:00:01.000 --> 00:00:02.000\nx\n"), FormatVTT); err == nil {
		t.Error("expected error without WEBVTT header")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json":      FormatJSON,
		"dir/B.SRT":   FormatSRT,
		"/x/clip.vtt": FormatVTT,
		"show.ass":    FormatASS,
		"old.SSA":     FormatASS,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("a.txt"); err == nil {
		t.Error("expected error for .txt input")
	}
}

func TestReadASS(t *testing.T) {
	script := "\ufeff[Script Info]\nTitle: test\n\n" +
		"[V4+ Styles]\nFormat: Name, Fontname\nStyle: Default,Arial\n\n" +
		"[Events]\n" +
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
		"Comment: 0,0:00:00.00,0:00:01.00,Default,,0,0,0,,ignored\n" +
		"Dialogue: 0,0:00:01.50,0:00:03.25,Default,,0,0,0,,{\\an5\\fad(100,100)}Hello, world\n" +
		"Dialogue: 0,1:02:03.04,1:02:04.00,Default,,0,0,0,,two\\Nlines\n" +
		"Dialogue: 0,0:00:05.00,0:00:06.00,Default,,0,0,0,,{\\pos(1,2)}\n"

	seq, err := Read(strings.NewReader(script), FormatASS)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []Entry{
		{Start: 1.5, End: 3.25, Text: "Hello, world"},
		{Start: 3723.04, End: 3724, Text: "two\nlines"},
	}
	got := seq.Entries()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Text != want[i].Text ||
			math.Abs(got[i].Start-want[i].Start) > 1e-9 ||
			math.Abs(got[i].End-want[i].End) > 1e-9 {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadASSErrors(t *testing.T) {
	tests := map[string]string{
		"no events":        "[Script Info]\nTitle: x\n",
		"dialogue first":   "[Events]\nDialogue: 0,0:00:00.00,0:00:01.00,x\n",
		"missing text col": "[Events]\nFormat: Start, End\n",
		"bad timestamp":    "[Events]\nFormat: Start, End, Text\nDialogue: 0:00:xx.00,0:00:01.00,hi\n",
		"too few fields":   "[Events]\nFormat: Layer, Start, End, Text\nDialogue: 0,0:00:00.00\n",
	}
	for name, script := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(script), FormatASS); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadVTTUnescapesEntities(t *testing.T) {
	seq, err := Read(strings.NewReader("WEBVTT\n\n00:00.000 --> 00:01.000\nfish &amp; chips &lt;3\n"), FormatVTT)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := seq.At(0).Text; got != "fish & chips <3" {
		t.Errorf("text = %q", got)
	}
}

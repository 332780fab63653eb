package style

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "white", want: color.NRGBA{255, 255, 255, 255}},
		{in: "Black", want: color.NRGBA{0, 0, 0, 255}},
		{in: "red", want: color.NRGBA{255, 0, 0, 255}},
		{in: "#00ff00", want: color.NRGBA{0, 255, 0, 255}},
		{in: "#11223344", want: color.NRGBA{0x11, 0x22, 0x33, 0x44}},
		{in: "0xFFAA00", want: color.NRGBA{255, 0xAA, 0, 255}},
		{in: "black@0.5", want: color.NRGBA{0, 0, 0, 128}},
		{in: "#ffffff@0", want: color.NRGBA{255, 255, 255, 0}},
		{in: "", wantErr: true},
		{in: "#fff", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "white@2", wantErr: true},
		{in: "chartreuse-ish", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFFmpegColor(t *testing.T) {
	if got := FFmpegColor(color.NRGBA{0xFF, 0x10, 0x00, 0x80}); got != "0xFF100080" {
		t.Errorf("FFmpegColor = %q", got)
	}
}

func TestASSColor(t *testing.T) {
	// opaque red is &H000000FF in ASS
	if got := ASSColor(color.NRGBA{255, 0, 0, 255}); got != "&H000000FF" {
		t.Errorf("ASSColor = %q", got)
	}
}

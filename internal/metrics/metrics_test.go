package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveJob("backend", "ffmpeg", true, 3*time.Second)
	m.ObserveJob("lite", "pillow", false, time.Second)
	m.AddFrames(90)
	m.AddFrames(-1)
	m.Fallback("ffmpeg", "pillow")
	m.SetOutputBytes(2048)

	path := filepath.Join(t.TempDir(), "subburn.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		`subburn_jobs_total{mode="backend",renderer="ffmpeg",status="success"} 1`,
		`subburn_jobs_total{mode="lite",renderer="pillow",status="failure"} 1`,
		`subburn_frames_rendered_total 90`,
		`subburn_renderer_fallbacks_total{from="ffmpeg",to="pillow"} 1`,
		`subburn_output_bytes 2048`,
		`subburn_job_duration_seconds_count{mode="backend",renderer="ffmpeg"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q\n%s", want, text)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveJob("lite", "pillow", true, time.Second)
	m.AddFrames(1)
	m.Fallback("a", "b")
	m.SetOutputBytes(1)
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile: %v", err)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.AddFrames(5)

	families, err := b.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "subburn_frames_rendered_total" && f.GetMetric()[0].GetCounter().GetValue() != 0 {
			t.Error("metrics leaked between registries")
		}
	}
}

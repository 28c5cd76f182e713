package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quadcast.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig() = %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("parseConfig() = %+v, want defaults %+v", cfg, defaultConfig())
	}
	if cfg.Interval != 33*time.Millisecond {
		t.Errorf("Interval = %v, want 33ms", cfg.Interval)
	}
}

func TestParseConfigFile(t *testing.T) {
	path := writeConfig(t, `
mode: snapshot
width: 320
height: 240
interval: 50ms
smooth: true
clear: "#000"
out: frame.bmp
record:
  fps: 60
  duration: 2s
`)
	cfg, err := parseConfig([]string{"-config", path}, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig() = %v", err)
	}
	if cfg.Mode != modeSnapshot || cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("mode/size = %s %dx%d", cfg.Mode, cfg.Width, cfg.Height)
	}
	if cfg.Interval != 50*time.Millisecond || !cfg.Smooth || cfg.Clear != "#000" || cfg.Out != "frame.bmp" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Record.FPS != 60 || cfg.Record.Duration != 2*time.Second {
		t.Errorf("record = %+v", cfg.Record)
	}
	// Unset keys keep their defaults.
	if cfg.Record.Codec != "libx264" {
		t.Errorf("Record.Codec = %q, want default libx264", cfg.Record.Codec)
	}
}

func TestParseConfigFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "width: 320\nheight: 240\n")
	cfg, err := parseConfig([]string{"-config", path, "-width", "640", "-v"}, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig() = %v", err)
	}
	if cfg.Width != 640 {
		t.Errorf("Width = %d, want 640 from flag", cfg.Width)
	}
	if cfg.Height != 240 {
		t.Errorf("Height = %d, want 240 from file", cfg.Height)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true from -v")
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"mode", []string{"-mode", "window"}, "unknown mode"},
		{"clear not hex", []string{"-clear", "zzzzzz"}, "invalid hex color"},
		{"clear length", []string{"-clear", "#12345"}, "invalid hex color"},
		{"clear partial", []string{"-clear", "#1z2233"}, "invalid hex color"},
		{"clear empty", []string{"-clear", ""}, "invalid hex color"},
		{"interval", []string{"-interval", "0s"}, "interval"},
		{"frames", []string{"-frames", "-1"}, "frames"},
		{"record without out", []string{"-mode", "record"}, "-out"},
		{"record fps", []string{"-mode", "record", "-out", "x.mp4", "-fps", "0"}, "fps"},
		{"missing file", []string{"-config", "/nonexistent/quadcast.yml"}, "open config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseConfig(tt.args, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParseConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "width: [1, 2\n")
	if _, err := parseConfig([]string{"-config", path}, io.Discard); err == nil {
		t.Error("expected parse error")
	}
}

func TestFrameClock(t *testing.T) {
	now := frameClock(30)
	a, b := now(), now()
	if d := b.Sub(a); d != time.Second/30 {
		t.Errorf("step = %v, want %v", d, time.Second/30)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.txt")
	for _, body := range []string{"first", "second"} {
		if err := writeFileAtomic(path, []byte(body)); err != nil {
			t.Fatalf("writeFileAtomic: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != body {
			t.Errorf("content = %q, want %q", got, body)
		}
	}
}

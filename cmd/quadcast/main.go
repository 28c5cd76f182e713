// Command quadcast renders the rotating quad headlessly and publishes the
// frames: as a data URI refreshed on a timer (stream), as a single BMP
// (snapshot), or as a video encoded by ffmpeg (record).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gogpu/quadcast"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "quadcast:", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	quadcast.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("quadcast failed", "mode", cfg.Mode, "error", err)
		os.Exit(1)
	}
}

// run creates the renderer and dispatches to the configured mode.
func run(ctx context.Context, cfg Config) error {
	opts := []quadcast.RendererOption{
		quadcast.WithSize(cfg.Width, cfg.Height),
		quadcast.WithClearColor(quadcast.Hex(cfg.Clear)),
	}
	if cfg.Smooth {
		opts = append(opts, quadcast.WithSmoothRotation())
	}
	if cfg.Mode == modeRecord {
		opts = append(opts, quadcast.WithClock(frameClock(cfg.Record.FPS)))
	}

	r, err := quadcast.New(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	switch cfg.Mode {
	case modeSnapshot:
		return snapshot(r, cfg.Out)
	case modeRecord:
		return record(ctx, r, cfg)
	default:
		return stream(ctx, r, cfg)
	}
}

// imageSource produces encoded frames. *quadcast.Renderer implements it.
type imageSource interface {
	GetImage() (string, error)
	Stats() quadcast.Stats
}

// stream calls GetImage every cfg.Interval from this goroutine only, so
// frames never overlap; ticks that arrive during a slow frame are dropped.
// A failed frame is logged and the loop continues.
func stream(ctx context.Context, r imageSource, cfg Config) error {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	slog.Info("streaming", "interval", cfg.Interval, "frames", cfg.Frames, "out", cfg.Out)
	for n := 0; cfg.Frames == 0 || n < cfg.Frames; {
		select {
		case <-ctx.Done():
			logStats(r)
			return nil
		case <-ticker.C:
		}

		b64, err := r.GetImage()
		if err != nil {
			slog.Warn("frame skipped", "error", err)
			continue
		}
		n++
		if cfg.Out != "" {
			if err := writeFileAtomic(cfg.Out, []byte(quadcast.DataURI(b64))); err != nil {
				return err
			}
		}
		slog.Debug("frame", "n", n, "base64_len", len(b64))
	}
	logStats(r)
	return nil
}

// snapshot renders one frame and saves it as BMP.
func snapshot(r *quadcast.Renderer, out string) error {
	if out == "" {
		out = "quadcast.bmp"
	}
	f, err := r.RenderFrame()
	if err != nil {
		return err
	}
	if err := f.SaveBMP(out); err != nil {
		return err
	}
	slog.Info("snapshot saved", "path", out, "width", f.Width(), "height", f.Height())
	return nil
}

// writeFileAtomic replaces path with data so readers never observe a
// partially written file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".quadcast-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func logStats(r interface{ Stats() quadcast.Stats }) {
	st := r.Stats()
	slog.Info("renderer stats",
		"frames", st.Frames,
		"failed", st.Failed,
		"last_render", st.RenderTime,
		"last_encode", st.EncodeTime)
}

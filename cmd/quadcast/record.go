package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/gogpu/quadcast"
)

// frameClock returns a clock that advances exactly one frame period per
// call, so a recording rotates at the same speed however long frames take
// to render.
func frameClock(fps int) func() time.Time {
	step := time.Second / time.Duration(fps)
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

// record pipes BMP frames into ffmpeg (image2pipe demuxer) for
// cfg.Record.Duration of video.
func record(ctx context.Context, r *quadcast.Renderer, cfg Config) error {
	total := int(cfg.Record.Duration.Seconds() * float64(cfg.Record.FPS))
	if total < 1 {
		total = 1
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs := ffmpeg.KwArgs{
		"f":         "image2pipe",
		"vcodec":    "bmp",
		"framerate": cfg.Record.FPS,
	}
	outputArgs := ffmpeg.KwArgs{
		"c:v":     cfg.Record.Codec,
		"pix_fmt": "yuv420p",
	}

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.Out, outputArgs).
		OverWriteOutput().WithInput(pipeReader)
	if cfg.Verbose {
		ffmpegCmd = ffmpegCmd.ErrorToStdOut()
	}
	if cfg.Record.FFmpeg != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(cfg.Record.FFmpeg)
	}

	errc := make(chan error, 1)
	go func() {
		err := ffmpegCmd.Run()
		// Unblock the writer if ffmpeg exits early.
		_ = pipeReader.CloseWithError(errors.Join(err, io.ErrClosedPipe))
		errc <- err
	}()

	slog.Info("recording", "out", cfg.Out, "frames", total, "fps", cfg.Record.FPS)
	pb := progressbar.Default(int64(total), "recording")
	defer pb.Close()

	writeErr := writeFrames(ctx, r, pipeWriter, total, func() { _ = pb.Add(1) })
	if errors.Is(writeErr, context.Canceled) {
		// Interrupted: let ffmpeg finish the frames it already has.
		slog.Info("recording interrupted")
		_ = pipeWriter.Close()
	} else {
		_ = pipeWriter.CloseWithError(writeErr)
	}

	if err := <-errc; err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	if writeErr != nil && !errors.Is(writeErr, context.Canceled) {
		return writeErr
	}
	logStats(r)
	return nil
}

// frameRenderer produces raw frames. *quadcast.Renderer implements it.
type frameRenderer interface {
	RenderFrame() (*quadcast.Frame, error)
}

// writeFrames renders total frames and writes each as BMP to w, calling
// done after every frame. It stops early when ctx is canceled.
func writeFrames(ctx context.Context, r frameRenderer, w io.Writer, total int, done func()) error {
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := r.RenderFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := f.EncodeBMP(w); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		done()
	}
	return nil
}

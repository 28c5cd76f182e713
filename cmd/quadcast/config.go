package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/quadcast"
)

// Run modes.
const (
	modeStream   = "stream"
	modeSnapshot = "snapshot"
	modeRecord   = "record"
)

// maxConfigSize bounds the config file read.
const maxConfigSize = 1024 * 1024 // 1MB

// Config holds the command settings. Values come from defaults, then the
// YAML file named by -config, then flags given on the command line.
type Config struct {
	Mode     string        `yaml:"mode"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Interval time.Duration `yaml:"interval"`
	Frames   int           `yaml:"frames"` // 0 = until interrupted
	Smooth   bool          `yaml:"smooth"`
	Clear    string        `yaml:"clear"` // hex color
	Out      string        `yaml:"out"`
	Verbose  bool          `yaml:"verbose"`

	Record RecordConfig `yaml:"record"`
}

// RecordConfig configures record mode.
type RecordConfig struct {
	Duration time.Duration `yaml:"duration"`
	FPS      int           `yaml:"fps"`
	FFmpeg   string        `yaml:"ffmpeg"` // path to the ffmpeg binary
	Codec    string        `yaml:"codec"`
}

// defaultConfig returns the settings used when nothing is configured.
func defaultConfig() Config {
	return Config{
		Mode:     modeStream,
		Width:    800,
		Height:   600,
		Interval: 33 * time.Millisecond,
		Clear:    "#ffffff",
		Record: RecordConfig{
			Duration: 5 * time.Second,
			FPS:      30,
			Codec:    "libx264",
		},
	}
}

// loadConfigFile merges the YAML file at path into cfg.
func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if len(data) > maxConfigSize {
		return fmt.Errorf("config %s exceeds %d bytes", path, maxConfigSize)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	slog.Debug("loaded config file", "path", path)
	return nil
}

// parseConfig builds the configuration from command-line arguments.
func parseConfig(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("quadcast", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := defaultConfig()
	var (
		configPath = fs.String("config", "", "YAML config file")
		mode       = fs.String("mode", def.Mode, "run mode: stream, snapshot, or record")
		width      = fs.Int("width", def.Width, "frame width")
		height     = fs.Int("height", def.Height, "frame height")
		interval   = fs.Duration("interval", def.Interval, "stream mode: time between frames")
		frames     = fs.Int("frames", def.Frames, "stream mode: frames to produce, 0 = until interrupted")
		smooth     = fs.Bool("smooth", def.Smooth, "rotate by whole elapsed time instead of its millisecond component")
		clearHex   = fs.String("clear", def.Clear, "background color (hex)")
		out        = fs.String("out", def.Out, "output file (stream: data URI, snapshot: .bmp, record: video)")
		duration   = fs.Duration("duration", def.Record.Duration, "record mode: video length")
		fps        = fs.Int("fps", def.Record.FPS, "record mode: frames per second")
		ffmpegPath = fs.String("ffmpeg", def.Record.FFmpeg, "record mode: ffmpeg binary")
		verbose    = fs.Bool("v", def.Verbose, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := def
	if *configPath != "" {
		if err := loadConfigFile(*configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	// Flags given explicitly override the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "interval":
			cfg.Interval = *interval
		case "frames":
			cfg.Frames = *frames
		case "smooth":
			cfg.Smooth = *smooth
		case "clear":
			cfg.Clear = *clearHex
		case "out":
			cfg.Out = *out
		case "duration":
			cfg.Record.Duration = *duration
		case "fps":
			cfg.Record.FPS = *fps
		case "ffmpeg":
			cfg.Record.FFmpeg = *ffmpegPath
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks settings that New and the run loops cannot.
func (c *Config) validate() error {
	var errs []error
	switch c.Mode {
	case modeStream, modeSnapshot, modeRecord:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if _, err := quadcast.ParseHex(c.Clear); err != nil {
		errs = append(errs, fmt.Errorf("clear: %w", err))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %v", c.Interval))
	}
	if c.Frames < 0 {
		errs = append(errs, fmt.Errorf("frames must not be negative, got %d", c.Frames))
	}
	if c.Mode == modeRecord {
		if c.Record.FPS <= 0 {
			errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.Record.FPS))
		}
		if c.Record.Duration <= 0 {
			errs = append(errs, fmt.Errorf("duration must be positive, got %v", c.Record.Duration))
		}
		if c.Out == "" {
			errs = append(errs, errors.New("record mode needs -out"))
		}
	}
	return errors.Join(errs...)
}

// Package config assembles the application configuration from defaults, an
// optional TOML file, the environment and command line flags, in that order.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/pongengine/pong/internal/logging"
	"github.com/pongengine/pong/internal/renderer"
)

var ErrInvalid = errors.New("invalid configuration")

const (
	EnvValidation = "PONG_VALIDATION"
	EnvLogLevel   = "PONG_LOG_LEVEL"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	X      int    `toml:"x"`
	Y      int    `toml:"y"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type RendererConfig struct {
	ApplicationName string     `toml:"application_name"`
	EngineName      string     `toml:"engine_name"`
	Validation      bool       `toml:"validation"`
	PresentMode     string     `toml:"present_mode"`
	ClearColor      [4]float32 `toml:"clear_color"`
	StatsInterval   int        `toml:"stats_interval"`
	Limits          Limits     `toml:"limits"`
}

type Limits struct {
	PhysicalDevices int `toml:"physical_devices"`
	QueueFamilies   int `toml:"queue_families"`
	SurfaceFormats  int `toml:"surface_formats"`
	SwapchainImages int `toml:"swapchain_images"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Default() Config {
	opts := renderer.DefaultOptions()
	return Config{
		Window: WindowConfig{
			Title:  "Pong",
			X:      100,
			Y:      100,
			Width:  1600,
			Height: 720,
		},
		Renderer: RendererConfig{
			ApplicationName: opts.ApplicationName,
			EngineName:      opts.EngineName,
			Validation:      opts.Validation,
			PresentMode:     opts.PresentMode.String(),
			ClearColor:      opts.ClearColor,
			StatsInterval:   opts.StatsInterval,
			Limits: Limits{
				PhysicalDevices: opts.Limits.MaxPhysicalDevices,
				QueueFamilies:   opts.Limits.MaxQueueFamilies,
				SurfaceFormats:  opts.Limits.MaxSurfaceFormats,
				SwapchainImages: opts.Limits.MaxSwapchainImages,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
	}
}

// LoadFile decodes the TOML file at path over cfg. Keys the Config does not
// define are rejected.
func LoadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.Mark(errors.Newf("%s: %s", path, strict.String()), ErrInvalid)
		}
		return errors.Mark(errors.Wrapf(err, "decode %s", path), ErrInvalid)
	}
	return nil
}

// ApplyEnv overrides cfg from the environment through lookup, normally
// os.LookupEnv.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvValidation); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "%s", EnvValidation), ErrInvalid)
		}
		cfg.Renderer.Validation = enabled
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return errors.Mark(errors.NewWithDepthf(1, format, args...), ErrInvalid)
}

func (cfg Config) Validate() error {
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return invalid("window size %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if _, err := ParsePresentMode(cfg.Renderer.PresentMode); err != nil {
		return err
	}
	for i, c := range cfg.Renderer.ClearColor {
		if c < 0 || c > 1 {
			return invalid("clear color component %d is %v, want [0, 1]", i, c)
		}
	}
	if cfg.Renderer.StatsInterval < 0 {
		return invalid("stats interval %d", cfg.Renderer.StatsInterval)
	}

	limits := cfg.Renderer.Limits
	for _, l := range []struct {
		name  string
		value int
	}{
		{"physical_devices", limits.PhysicalDevices},
		{"queue_families", limits.QueueFamilies},
		{"surface_formats", limits.SurfaceFormats},
		{"swapchain_images", limits.SwapchainImages},
	} {
		if l.value < 1 {
			return invalid("limit %s is %d, want at least 1", l.name, l.value)
		}
	}

	if err := logging.Validate(cfg.Log.Level, cfg.Log.Format); err != nil {
		return errors.Mark(err, ErrInvalid)
	}
	return nil
}

// ParsePresentMode maps the names printed by renderer.PresentMode.String
// back to the mode.
func ParsePresentMode(s string) (renderer.PresentMode, error) {
	for _, mode := range []renderer.PresentMode{
		renderer.PresentModeFIFO,
		renderer.PresentModeMailbox,
		renderer.PresentModeImmediate,
		renderer.PresentModeFIFORelaxed,
	} {
		if strings.EqualFold(s, mode.String()) {
			return mode, nil
		}
	}
	return 0, errors.WithHint(invalid("present mode %q", s), "use fifo, mailbox, immediate or fifo-relaxed")
}

// RendererOptions converts a validated Config.
func (cfg Config) RendererOptions() renderer.Options {
	mode, err := ParsePresentMode(cfg.Renderer.PresentMode)
	if err != nil {
		mode = renderer.PresentModeFIFO
	}

	return renderer.Options{
		ApplicationName: cfg.Renderer.ApplicationName,
		EngineName:      cfg.Renderer.EngineName,
		Validation:      cfg.Renderer.Validation,
		PresentMode:     mode,
		ClearColor:      mgl32.Vec4(cfg.Renderer.ClearColor),
		Limits: renderer.Limits{
			MaxPhysicalDevices: cfg.Renderer.Limits.PhysicalDevices,
			MaxQueueFamilies:   cfg.Renderer.Limits.QueueFamilies,
			MaxSurfaceFormats:  cfg.Renderer.Limits.SurfaceFormats,
			MaxSwapchainImages: cfg.Renderer.Limits.SwapchainImages,
		},
		StatsInterval: cfg.Renderer.StatsInterval,
	}
}

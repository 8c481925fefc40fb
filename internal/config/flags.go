package config

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// Flags holds the command line overrides. Only flags the user actually set
// are applied.
type Flags struct {
	fs *pflag.FlagSet

	ConfigPath    string
	Title         string
	Width         int
	Height        int
	Validation    bool
	PresentMode   string
	StatsInterval int
	LogLevel      string
	LogFormat     string
}

// RegisterFlags defines the application flags on fs. Defaults shown in the
// usage text come from Default.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	def := Default()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "TOML configuration file")
	fs.StringVar(&f.Title, "title", def.Window.Title, "window title")
	fs.IntVar(&f.Width, "width", def.Window.Width, "window width in pixels")
	fs.IntVar(&f.Height, "height", def.Window.Height, "window height in pixels")
	fs.BoolVar(&f.Validation, "validation", def.Renderer.Validation, "enable the Khronos validation layer")
	fs.StringVar(&f.PresentMode, "present-mode", def.Renderer.PresentMode, "fifo, mailbox, immediate or fifo-relaxed")
	fs.IntVar(&f.StatsInterval, "stats-interval", def.Renderer.StatsInterval, "frames between frame statistics log lines, 0 disables")
	fs.StringVar(&f.LogLevel, "log-level", def.Log.Level, "debug, info, warn or error")
	fs.StringVar(&f.LogFormat, "log-format", def.Log.Format, "text or json")
	return f
}

func (f *Flags) apply(cfg *Config) {
	changed := f.fs.Changed

	if changed("title") {
		cfg.Window.Title = f.Title
	}
	if changed("width") {
		cfg.Window.Width = f.Width
	}
	if changed("height") {
		cfg.Window.Height = f.Height
	}
	if changed("validation") {
		cfg.Renderer.Validation = f.Validation
	}
	if changed("present-mode") {
		cfg.Renderer.PresentMode = f.PresentMode
	}
	if changed("stats-interval") {
		cfg.Renderer.StatsInterval = f.StatsInterval
	}
	if changed("log-level") {
		cfg.Log.Level = f.LogLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.LogFormat
	}
}

// Resolve parses args and builds the final Config: defaults, then the file
// named by --config, then the environment, then the remaining flags.
func Resolve(args []string, lookupEnv func(string) (string, bool)) (Config, error) {
	fs := pflag.NewFlagSet("pong", pflag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Mark(errors.Wrap(err, "parse flags"), ErrInvalid)
	}

	cfg := Default()
	if flags.ConfigPath != "" {
		if err := LoadFile(&cfg, flags.ConfigPath); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return Config{}, err
	}
	flags.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

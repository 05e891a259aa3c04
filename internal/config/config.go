// Package config holds the viewer settings read from a TOML file and
// overridden by command line flags.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cogentcore.org/core/colors"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all viewer settings
type Config struct {
	LogLevel string `toml:"log_level"`

	Window     Window     `toml:"window"`
	Cache      Cache      `toml:"cache"`
	AutoRotate AutoRotate `toml:"auto_rotate"`
	Fade       Fade       `toml:"fade"`
	Remote     Remote     `toml:"remote"`
	Gyro       Gyro       `toml:"gyro"`

	// HomeView is the home view file, next to the tour file by default
	HomeView string `toml:"home_view"`
}

// Window settings
type Window struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	FPS        int     `toml:"fps"`
	Fov        float32 `toml:"fov"`
	Background string  `toml:"background"`
}

// Cache settings
type Cache struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// AutoRotate settings
type AutoRotate struct {
	Enabled *bool   `toml:"enabled"`
	Speed   float32 `toml:"speed"`
	// Delay is how long input pauses auto rotation, e.g. "5s"
	Delay string `toml:"delay"`
}

// Fade durations, e.g. "500ms"
type Fade struct {
	In  string `toml:"in"`
	Out string `toml:"out"`
}

// Remote control settings. An empty address disables it.
type Remote struct {
	Listen string `toml:"listen"`
}

// Gyro settings. An empty port disables it.
type Gyro struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

// Flags holds CLI flag values that override config file settings
type Flags struct {
	Width, Height int
	FPS           int
	Fov           float32
	Background    string
	CacheDir      string
	NoCache       bool
	NoAutoRotate  bool
	Listen        string
	GyroPort      string
	GyroBaud      int
	LogLevel      string
	HomeView      string
}

// Load reads a TOML config file. Fields not set in the file keep their
// zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional reads path if it exists and returns the zero Config
// otherwise
func LoadOptional(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// DefaultPath returns the config file in the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gopano", "config.toml")
}

// Resolve applies flags and fills empty fields with defaults. Flags take
// priority when non-zero.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Window.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Window.Height = flags.Height
	}
	if flags.FPS > 0 {
		c.Window.FPS = flags.FPS
	}
	if flags.Fov > 0 {
		c.Window.Fov = flags.Fov
	}
	if flags.Background != "" {
		c.Window.Background = flags.Background
	}
	if flags.CacheDir != "" {
		c.Cache.Dir = flags.CacheDir
	}
	if flags.NoCache {
		c.Cache.Enabled = boolPtr(false)
	}
	if flags.NoAutoRotate {
		c.AutoRotate.Enabled = boolPtr(false)
	}
	if flags.Listen != "" {
		c.Remote.Listen = flags.Listen
	}
	if flags.GyroPort != "" {
		c.Gyro.Port = flags.GyroPort
	}
	if flags.GyroBaud > 0 {
		c.Gyro.Baud = flags.GyroBaud
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.HomeView != "" {
		c.HomeView = flags.HomeView
	}

	if c.Window.Width <= 0 {
		c.Window.Width = 1400
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 900
	}
	if c.Window.FPS <= 0 {
		c.Window.FPS = 60
	}
	if c.Window.Fov <= 0 {
		c.Window.Fov = 75
	}
	if c.Window.Background == "" {
		c.Window.Background = "#ffffff"
	}
	if c.Cache.Enabled == nil {
		c.Cache.Enabled = boolPtr(true)
	}
	if c.AutoRotate.Enabled == nil {
		c.AutoRotate.Enabled = boolPtr(true)
	}
	if c.AutoRotate.Speed == 0 {
		c.AutoRotate.Speed = 2
	}
	if c.AutoRotate.Delay == "" {
		c.AutoRotate.Delay = "5s"
	}
	if c.Fade.In == "" {
		c.Fade.In = "500ms"
	}
	if c.Fade.Out == "" {
		c.Fade.Out = "1s"
	}
	if c.Gyro.Baud <= 0 {
		c.Gyro.Baud = 115200
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks values that can only be parsed after Resolve
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.BackgroundColor(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	for name, d := range map[string]string{"auto_rotate.delay": c.AutoRotate.Delay, "fade.in": c.Fade.In, "fade.out": c.Fade.Out} {
		if _, err := time.ParseDuration(d); err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// CacheEnabled reports whether images are cached
func (c *Config) CacheEnabled() bool { return c.Cache.Enabled == nil || *c.Cache.Enabled }

// AutoRotateEnabled reports whether the camera turns while idle
func (c *Config) AutoRotateEnabled() bool {
	return c.AutoRotate.Enabled == nil || *c.AutoRotate.Enabled
}

// AutoRotateDelay returns the parsed auto rotate delay, 0 when invalid
func (c *Config) AutoRotateDelay() time.Duration { return parseDuration(c.AutoRotate.Delay) }

// FadeIn returns the parsed fade in duration, 0 when invalid
func (c *Config) FadeIn() time.Duration { return parseDuration(c.Fade.In) }

// FadeOut returns the parsed fade out duration, 0 when invalid
func (c *Config) FadeOut() time.Duration { return parseDuration(c.Fade.Out) }

// BackgroundColor parses the background as a hex value or a CSS colour name
func (c *Config) BackgroundColor() (color.RGBA, error) {
	bg := strings.TrimSpace(c.Window.Background)
	var (
		col color.RGBA
		err error
	)
	if strings.HasPrefix(bg, "#") {
		col, err = colors.FromHex(bg)
	} else {
		col, err = colors.FromName(strings.ToLower(bg))
	}
	if err != nil {
		return color.RGBA{}, fmt.Errorf("config: background %q: %w", c.Window.Background, err)
	}
	return col, nil
}

// Level parses the log level name, e.g. "debug" or "warn"
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func boolPtr(b bool) *bool { return &b }

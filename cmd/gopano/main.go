package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"cogentcore.org/core/base/logx"
	"github.com/philipparndt/gopano/internal/app"
	"github.com/philipparndt/gopano/internal/config"
	"github.com/philipparndt/gopano/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	flags      config.Flags

	verbose, veryVerbose, quiet bool
)

var rootCmd = &cobra.Command{
	Use:   "gopano <tour>",
	Short: "360° panorama tour viewer",
	Long: `GoPano shows 360° panoramas and virtual tours.

The argument is a tour file (JSON or YAML), a single equirectangular image
or a directory holding six cube face images.`,
	Version:           version.GetFullVersion(),
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cmd.Context(), cfg, args[0])
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultPath(), "config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log progress")
	pf.BoolVar(&veryVerbose, "vv", false, "log everything")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log errors only")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.IntVar(&flags.Width, "width", 0, "window width")
	f.IntVar(&flags.Height, "height", 0, "window height")
	f.IntVar(&flags.FPS, "fps", 0, "maximum frames rendered per second")
	f.Float32Var(&flags.Fov, "fov", 0, "vertical field of view in degrees")
	f.StringVar(&flags.Background, "background", "", "background colour, hex or CSS name")
	f.StringVar(&flags.CacheDir, "cache-dir", "", "image cache directory")
	f.BoolVar(&flags.NoCache, "no-cache", false, "do not cache images")
	f.BoolVar(&flags.NoAutoRotate, "no-auto-rotate", false, "do not rotate while idle")
	f.StringVar(&flags.Listen, "listen", "", "serve the websocket remote control on this address, e.g. :8080")
	f.StringVar(&flags.GyroPort, "gyro-port", "", "serial port of an orientation sensor")
	f.IntVar(&flags.GyroBaud, "gyro-baud", 0, "baud rate of the orientation sensor")
	f.StringVar(&flags.HomeView, "home-view", "", "home view file, <tour>.home.json by default")
}

// loadConfig reads the config file, applies the flags and validates
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return cfg, err
	}
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogging installs a text handler on stderr. -v, --vv and -q take
// priority over the configured level.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level := slog.LevelInfo
	if verbose || veryVerbose || quiet {
		level = logx.LevelFromFlags(veryVerbose, verbose, quiet)
	} else {
		cfg, err := config.LoadOptional(configPath)
		if err != nil {
			return err
		}
		cfg.Resolve(config.Flags{LogLevel: flags.LogLevel})
		if level, err = cfg.Level(); err != nil {
			return err
		}
	}
	logx.UserLevel = level
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/config"
	"github.com/thelfer/tfel-sub013/internal/version"
)

var (
	flagConfig   string
	flagLogLevel string
	flagNoColor  bool
	flagTheme    string

	// cfg and logger are set up by the root PersistentPreRunE.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mfront",
	Short: "Check and export MFront material knowledge files",
	Long: `mfront parses behaviours, material properties and models written in the
MFront domain specific languages. Every file is checked on its own: a failing
file never stops the others.

Settings are read from the user configuration file, then from the nearest
` + config.FileName + ` found from the working directory upwards. Flags win.`,
	Version:           version.Info(),
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "use this configuration file only")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	pf.StringVar(&flagTheme, "theme", "", "color theme")

	_ = rootCmd.RegisterFlagCompletionFunc("theme", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return cli.ThemeNames(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetVersionTemplate("mfront {{.Version}}\n")
}

// setup loads the configuration, applies the global flags and installs the
// logger. Commands read cfg after it ran.
func setup(cmd *cobra.Command, _ []string) error {
	if flagNoColor {
		cli.ColorEnabled = false
	}

	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		var wd string
		if wd, err = os.Getwd(); err == nil {
			cfg, err = config.Load(wd)
		}
	}
	if err != nil {
		return err
	}

	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagTheme != "" {
		cfg.Theme = flagTheme
	}
	if err := cli.SetTheme(cfg.Theme); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "root", cfg.Root, "sources", cfg.Sources)
	return nil
}

// commandContext returns a context cancelled on interrupt, for commands
// that run until stopped.
func commandContext() (context.Context, context.CancelFunc) {
	return cli.SetupSignalHandler()
}

// validate checks cfg after the command flags have been applied.
func validate() error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	return nil
}

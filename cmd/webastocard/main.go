package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jask/webastocard/internal/config"
	"github.com/jask/webastocard/internal/logging"
	"github.com/jask/webastocard/internal/secrets"
)

var errNoToken = errors.New("no Home Assistant access token: set the token env var, run `webastocard token set`, or add hass.token to the config")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webastocard",
		Short:         "Terminal dashboard for a Webasto heater controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDashboard,
	}
	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default $WEBASTOCARD_CONFIG or ~/.config/webastocard/config.toml)")
	flags.String("mode", "", "entity source: hass or heater (overrides host.mode)")
	flags.String("log-level", "", "log level (overrides log.level)")

	root.AddCommand(
		newRunCmd(),
		newResolveCmd(),
		newCardsCmd(),
		newPressCmd(),
		newSetCmd(),
		newConfigCmd(),
		newTokenCmd(),
	)
	return root
}

// env is what every command needs after flags are parsed.
type env struct {
	cfg    config.Config
	logger zerolog.Logger
	closer io.Closer
}

func (e *env) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

// setup loads the configuration and builds the logger. The dashboard logs to
// a file; other commands log to stderr.
func setup(cmd *cobra.Command, toFile bool) (*env, error) {
	flags := cmd.Flags()
	if p, _ := flags.GetString("config"); p != "" {
		if err := os.Setenv("WEBASTOCARD_CONFIG", p); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if m, _ := flags.GetString("mode"); m != "" {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != config.ModeHass && m != config.ModeHeater {
			return nil, fmt.Errorf("--mode %q: want %s or %s", m, config.ModeHass, config.ModeHeater)
		}
		cfg.Host.Mode = m
	}
	if l, _ := flags.GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}

	opts := logging.Options{Level: cfg.Log.Level, File: cfg.Log.File}
	if !toFile {
		opts.Console = true
		opts.Out = cmd.ErrOrStderr()
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, closer: closer}, nil
}

type tokenSource interface {
	FetchToken(baseURL string) (string, error)
}

// resolveToken looks in the configured env var, then the token store, then
// the config file.
func resolveToken(cfg config.Config, store tokenSource) string {
	if env := strings.TrimSpace(cfg.Hass.TokenEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if store != nil {
		if t, err := store.FetchToken(cfg.Hass.URL); err == nil && t != "" {
			return t
		}
	}
	return strings.TrimSpace(cfg.Hass.Token)
}

func defaultToken(cfg config.Config, logger zerolog.Logger) string {
	store, err := secrets.Default()
	if err != nil {
		logger.Debug().Err(err).Msg("token store unavailable")
		return resolveToken(cfg, nil)
	}
	return resolveToken(cfg, store)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/worldland/netstats/internal/auth"
	"github.com/worldland/netstats/internal/config"
	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/logs"
	"github.com/worldland/netstats/internal/services"
)

const (
	FlagConfig   = "config"
	FlagLogLevel = "log-level"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	app := &cli.App{
		Name:                 "netstats",
		Usage:                "Browse compute marketplace providers, pricing and network statistics",
		EnableBashCompletion: true,
		Version:              version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    FlagConfig,
				Aliases: []string{"c"},
				EnvVars: []string{"NETSTATS_CONFIG"},
				Usage:   "config file path (default " + config.DefaultPath + " when present)",
			},
			&cli.StringFlag{
				Name:  FlagLogLevel,
				Usage: "override the configured log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			serveCmd,
			providersCmd,
			summaryCmd,
			nodeCmd,
			operatorCmd,
			pricingCmd,
			presetsCmd,
			networkCmd,
			loginCmd,
			logoutCmd,
			healthcheckCmd,
			feedbackCmd,
			versionCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			newPrinter().PrintError(authErr.Message())
		} else {
			newPrinter().PrintError(err.Error())
		}
		_ = logs.Sync()
		os.Exit(1)
	}
	_ = logs.Sync()
}

// setup loads the configuration and initialises logging
func setup(cctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(cctx.String(FlagConfig))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	opts := cfg.LogOptions()
	if lvl := cctx.String(FlagLogLevel); lvl != "" {
		opts.Level = lvl
	}
	if err := logs.Setup(opts); err != nil {
		return config.Config{}, fmt.Errorf("setup logging: %w", err)
	}
	return cfg, nil
}

// openDashboard builds a dashboard and restores the stored session
func openDashboard(cctx *cli.Context) (*services.Dashboard, error) {
	cfg, err := setup(cctx)
	if err != nil {
		return nil, err
	}
	d, err := services.NewDashboard(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := d.RestoreSession(cctx.Context); err != nil {
		logs.GetLogger().Warnw("could not restore session", "error", err)
	}
	return d, nil
}

// withDashboard runs fn against an opened dashboard and closes it afterwards
func withDashboard(cctx *cli.Context, fn func(ctx context.Context, d *services.Dashboard) error) error {
	d, err := openDashboard(cctx)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(cctx.Context, d)
}

// parseFilters turns repeated key=value flags into criteria. An empty value
// clears the key.
func parseFilters(base domain.FilterCriteria, pairs []string) (domain.FilterCriteria, error) {
	c := base.Clone()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return c, fmt.Errorf("filter %q: expected key=value", pair)
		}
		var v *string
		if value = strings.TrimSpace(value); value != "" {
			v = &value
		}
		if err := c.Set(key, v); err != nil {
			return c, fmt.Errorf("filter %q: %w", pair, err)
		}
	}
	return c, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ProyectAquanqa/panelsearch/filterconfig"
	"github.com/ProyectAquanqa/panelsearch/internal/config"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

const defaultTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "panelsearch",
		Usage: "Search and filter admin panel entity lists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Config file; overrides the default locations",
				EnvVars: []string{"PANELSEARCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error; overrides the config file",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			filterCommand(),
			snapshotsCommand(),
			indexCommand(),
			remoteCommand(),
			watchCommand(),
			{
				Name:  "entities",
				Usage: "List the registered entity descriptors",
				Action: func(c *cli.Context) error {
					return printJSON(filterconfig.Entities())
				},
			},
		},
	}
}

type appKey struct{}

// setup loads the config, configures logging and registers extra descriptors.
func setup(c *cli.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	slog.SetDefault(newLogger(level))

	if cfg.Descriptors != "" {
		entities, err := filterconfig.LoadAndRegister(cfg.Descriptors)
		if err != nil {
			return err
		}
		slog.DebugContext(c.Context, "registered descriptors", "path", cfg.Descriptors, "entities", entities)
	}

	c.Context = context.WithValue(c.Context, appKey{}, cfg)
	return nil
}

// configFrom returns the config loaded by setup, or loads it when the
// command runs without it.
func configFrom(c *cli.Context) (*config.Config, error) {
	if cfg, ok := c.Context.Value(appKey{}).(*config.Config); ok {
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

// newLogger writes text to stderr, or JSON to stdout when running under AWS.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func lookupEntity(c *cli.Context) (filterconfig.Descriptor, error) {
	entity := strings.TrimSpace(c.String("entity"))
	desc, err := filterconfig.Lookup(entity)
	if err != nil {
		return filterconfig.Descriptor{}, errors.Wrapf(err, "available: %s", strings.Join(filterconfig.Entities(), ", "))
	}
	return desc, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}
	fmt.Println(string(data))
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/zapr"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gstoney/arrow/config"
	"github.com/gstoney/arrow/server"
)

// App returns the command line application.
func App() *cli.App {
	return &cli.App{
		Name:  "arrow",
		Usage: "A Minecraft server speaking protocols 1.8 through 1.16.4",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML config file, created with defaults when missing",
				EnvVars: []string{"ARROW_CONFIG"},
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Log at debug level",
				EnvVars: []string{"ARROW_DEBUG"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Also write logs to this file, overriding log.file",
				EnvVars: []string{"ARROW_LOG_FILE"},
			},
		},
		Commands: []*cli.Command{configCommand()},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, c.String("config"), c.Bool("debug"), c.String("log-file"))
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Output the default configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write the defaults to this path instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			if path := c.String("write"); path != "" {
				if err := config.Write(path, config.Default()); err != nil {
					return cli.Exit(err, 1)
				}
				_, _ = fmt.Fprintf(c.App.Writer, "Configuration written to %s\n", path)
				return nil
			}
			b, err := config.Encode(config.Default())
			if err != nil {
				return cli.Exit(err, 1)
			}
			_, err = c.App.Writer.Write(b)
			return err
		},
	}
}

func run(ctx context.Context, configPath string, debug bool, logFile string) error {
	cfg, undecoded, cfgErr := config.Load(configPath)
	if logFile == "" {
		logFile = cfg.Log.File
	}
	debug = debug || cfg.Log.Debug

	zl, err := newZapLogger(debug, logFile)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	log := zapr.NewLogger(zl)

	if cfgErr != nil {
		log.Error(cfgErr, "could not load config, using defaults", "path", configPath)
	}
	if len(undecoded) > 0 {
		log.Info("ignoring unknown config keys", "keys", undecoded)
	}

	srv, err := server.New(&cfg, server.Options{Logger: log.WithName("server")})
	if err != nil {
		return err
	}
	log.Info("starting",
		"versions", fmt.Sprintf("%d..%d", cfg.Server.Version.Min, cfg.Server.Version.Max),
		"debug", debug)

	err = srv.ListenAndServe(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("stopped")
	return nil
}

// newZapLogger logs to stderr and, when path is set, to that file.
func newZapLogger(debug bool, path string) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		// logr V(n) is zap level -n; let V(2) packet traces through.
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-2))
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	if path != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, path)
	}
	return cfg.Build()
}

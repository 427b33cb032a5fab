package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/shellkitio/shellkit/pkg/config"
	"github.com/shellkitio/shellkit/pkg/shellkit"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("SHELLKIT_CONFIG"), "path to YAML or JSON config file")
		initConfig = flag.String("init-config", "", "write the default config to this path and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *initConfig != "" {
		if err := config.SaveYAML(*initConfig, config.Default()); err != nil {
			logger.Error("failed to write default config", "path", *initConfig, "error", err)
			os.Exit(1)
		}
		fmt.Println(*initConfig)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	app := shellkit.New(cfg, logger)
	registerBuiltins(app)

	if err := app.Run(); err != nil {
		logger.Error("shell exited with error", "error", err)
		os.Exit(1)
	}
}

// registerBuiltins installs the actions every front-end can rely on.
// Application-specific actions are registered by the embedding shell.
func registerBuiltins(app *shellkit.App) {
	app.Registry().Register("ping", func(ctx context.Context, body json.RawMessage) (any, error) {
		return "pong", nil
	})
	app.Registry().Register("runtime.info", func(ctx context.Context, body json.RawMessage) (any, error) {
		return map[string]any{
			"os":      runtime.GOOS,
			"arch":    runtime.GOARCH,
			"version": runtime.Version(),
		}, nil
	})
	app.Registry().Register("loop.stats", func(ctx context.Context, body json.RawMessage) (any, error) {
		return app.Loop().Stats(), nil
	})
}

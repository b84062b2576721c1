package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/specialistvlad/trainctl/internal/app"
	"github.com/specialistvlad/trainctl/internal/cli"
)

const description = `trainctl - train a model from layered configuration.

Options are resolved from, lowest to highest priority: declared defaults,
default config files, --config files, PL_* environment variables (when
TRAINCTL_PARSE_ENV=true) and command-line flags.`

// main is the entrypoint for the trainctl application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:], env.ToMap(os.Environ())); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string, environ map[string]string) error {
	cfg, err := app.ConfigFromEnv(environ)
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error(), Err: err}
	}

	opts := append(cfg.Options(),
		app.WithDescription(description),
		app.WithLogging(cfg.LogLevel, cfg.LogFormat, os.Stderr),
		app.WithLookupEnv(func(key string) (string, bool) {
			v, ok := environ[key]
			return v, ok
		}),
	)
	trainctl := app.New(outW, nil, cfg.Model, opts...)

	return cli.ToExitError(trainctl.Run(context.Background(), args))
}

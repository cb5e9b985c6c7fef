package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/bornholm/crosspost/internal/build"
	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// Main runs the CLI. The context given to the commands is canceled on the
// first interrupt, a second one kills the process.
func Main(name string, usage string, commands ...*cli.Command) {
	app := &cli.App{
		Name:     name,
		Usage:    usage,
		Commands: commands,
		Version:  build.LongVersion,
		Before: func(ctx *cli.Context) error {
			workdir := ctx.String("workdir")
			// Switch to new working directory if defined
			if workdir != "" {
				if err := os.Chdir(workdir); err != nil {
					return errors.Wrap(err, "could not change working directory")
				}
			}

			var level slog.Level
			if err := level.UnmarshalText([]byte(ctx.String("log-level"))); err != nil {
				return errors.Wrapf(err, "invalid log level '%s'", ctx.String("log-level"))
			}

			debug := ctx.Bool("debug")
			if debug {
				level = slog.LevelDebug
			}

			logger := slog.New(slogx.ContextHandler{
				Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level:     level,
					AddSource: debug,
				}),
			})

			slog.SetDefault(logger)

			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"CROSSPOST_CONFIG"},
				Aliases: []string{"c"},
				Usage:   "YAML file (path, file://, http(s):// or '-') providing flag values",
			},
			&cli.BoolFlag{
				Name:    "debug",
				EnvVars: []string{"CROSSPOST_DEBUG"},
				Usage:   "Log at debug level with sources and print errors with their stack",
			},
			&cli.StringFlag{
				Name:    "workdir",
				EnvVars: []string{"CROSSPOST_WORKDIR"},
				Usage:   "Working directory, relative paths are resolved from it",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"CROSSPOST_LOGGER_LEVEL"},
				Usage:   "Logging level (debug, info, warn or error)",
				Value:   "warn",
			},
		},
	}

	app.ExitErrHandler = func(ctx *cli.Context, err error) {
		if err == nil {
			return
		}

		if ctx.Bool("debug") {
			slog.ErrorContext(ctx.Context, fmt.Sprintf("%+v", err))
			return
		}

		slog.ErrorContext(ctx.Context, err.Error())
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		// Restore the default behavior so that a second signal kills the process
		stop()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()

		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			os.Exit(exitCoder.ExitCode())
		}

		os.Exit(1)
	}

	stop()
}

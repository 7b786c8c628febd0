package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/brandforge/brandforge/pkg/cmd"
	"github.com/brandforge/brandforge/pkg/log"
	"github.com/brandforge/brandforge/pkg/otelhelper"
	"github.com/brandforge/brandforge/pkg/provider"
	"github.com/brandforge/brandforge/pkg/supervisor"
)

const defaultPort = 9092

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "brandforge-api",
		Usage:                 "Run the branding pipeline API server",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (postgres://, redis:// or a file path)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "fallbacks-path",
				Usage:   "Path to a JSON file overriding the built-in fallback images",
				Sources: cli.EnvVars("FALLBACKS_PATH"),
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron schedule for the session expiry sweep",
				Value:   supervisor.DefaultSweepSchedule,
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing BrandForge API")

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			tracer, err := otelhelper.NewTracer(ctx, "brandforge-api")
			if err != nil {
				logger.ErrorContext(ctx, "Failed to initialize tracer", "error", err)

				return err
			}

			fallbacks := provider.NewFallbackRegistry()
			if path := command.String("fallbacks-path"); path != "" {
				if err := fallbacks.LoadFile(path); err != nil {
					logger.ErrorContext(ctx, "Failed to load fallback catalog", "error", err)

					return err
				}
			}

			api := NewAPI(logger, persistence, eventBus, tracer, fallbacks)

			if err := api.Start(ctx, command.Int("port"), command.String("sweep-schedule")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run brandforge-api", "error", err)
		os.Exit(1)
	}
}

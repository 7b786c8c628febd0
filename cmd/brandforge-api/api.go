// Package main provides the BrandForge API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/brandforge/brandforge/pkg/eventbus"
	"github.com/brandforge/brandforge/pkg/fanout"
	"github.com/brandforge/brandforge/pkg/naming"
	"github.com/brandforge/brandforge/pkg/persistence"
	"github.com/brandforge/brandforge/pkg/provider"
	"github.com/brandforge/brandforge/pkg/supervisor"
	"github.com/brandforge/brandforge/pkg/web"
	"github.com/brandforge/brandforge/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	fallbacks   *provider.FallbackRegistry
	validate    *validator.Validate
	supervisor  *supervisor.Supervisor
	sweeper     *supervisor.Sweeper
}

func NewAPI(
	logger *slog.Logger,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	fallbacks *provider.FallbackRegistry,
) *API {
	return &API{
		logger:      logger,
		persistence: p,
		eventBus:    eventBus,
		tracer:      tracer,
		fallbacks:   fallbacks,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	config := workflow.DefaultConfig()

	registry := provider.NewRegistry(
		provider.NewStaticClient("dalle", "https://images.brandforge.dev/dalle", 250*time.Millisecond),
		provider.NewStaticClient("sdxl", "https://images.brandforge.dev/sdxl", 400*time.Millisecond),
		provider.NewStaticClient("gemini", "https://images.brandforge.dev/gemini", 300*time.Millisecond),
	)

	executor := fanout.NewExecutor(registry, a.fallbacks, a.tracer)
	generator := naming.NewGenerator(naming.DefaultScoringConfig())

	controller := workflow.NewController(a.persistence, a.eventBus, executor, generator, a.fallbacks, a.tracer, config)
	a.supervisor = supervisor.NewSupervisor(controller, a.persistence)
	a.sweeper = supervisor.NewSweeper(controller, a.persistence)

	handlers := web.NewAPIHandlers(controller, a.supervisor, a.persistence, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("BrandForge API")
	})

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/:id", handlers.GetSession)
	s.Get("/:id/status", handlers.GetStatus)
	s.Get("/:id/events", handlers.GetEvents)
	s.Post("/:id/analysis", handlers.RunAnalysis)
	s.Post("/:id/names/suggest", handlers.SuggestNames)
	s.Post("/:id/names/regenerate", handlers.RegenerateNames)
	s.Post("/:id/names/select", handlers.SelectName)
	s.Post("/:id/signboards/generate", handlers.GenerateSignboards)
	s.Post("/:id/signboards/select", handlers.SelectSignboard)
	s.Post("/:id/interiors/generate", handlers.GenerateInteriors)
	s.Post("/:id/interiors/select", handlers.SelectInterior)
	s.Post("/:id/report", handlers.BuildReport)
	s.Post("/:id/recover", handlers.Recover)

	// Short status route kept for clients polling during generation.
	app.Get("/status/:id", handlers.GetStatus)

	app.Get("/stats", handlers.GetStats)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(ctx context.Context, port int, sweepSchedule string) error {
	app := a.App()

	if err := a.supervisor.HandleEvents(a.eventBus); err != nil {
		return err
	}

	if err := a.eventBus.Subscribe(ctx); err != nil {
		return err
	}

	if err := a.sweeper.Start(ctx, sweepSchedule); err != nil {
		return err
	}
	defer a.sweeper.Stop()

	return app.Listen(":" + strconv.Itoa(port))
}

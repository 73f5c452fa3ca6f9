package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"prun-economy-lab/internal/observability"
)

// Options configures the HTTP API.
type Options struct {
	State             *State
	ReferenceExchange string
	Exchanges         []string // accepted values of the exchange filter
	Metrics           *observability.Metrics
	Gatherer          prometheus.Gatherer // nil = default registry
	Logger            zerolog.Logger
}

// NewApp builds the fiber app with all routes registered.
func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "prun-economy-lab",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	SetupRoutes(app, opts)
	return app
}

// SetupRoutes registers the API on app.
func SetupRoutes(app *fiber.App, opts Options) {
	h := newHandler(opts)

	app.Use(requestMetrics(opts.Metrics, h.logger))

	app.Get("/health", h.Health)

	metrics := observability.Handler()
	if opts.Gatherer != nil {
		metrics = observability.HandlerFor(opts.Gatherer)
	}
	app.Get("/metrics", adaptor.HTTPHandler(metrics))

	v1 := app.Group("/v1")
	v1.Get("/scores", h.ListScores)
	v1.Get("/scores/:ticker", h.GetScores)
	v1.Get("/costs/:ticker", h.GetCost)
	v1.Get("/arbitrage", h.ListArbitrage)
	v1.Get("/advice", h.ListAdvice)
	v1.Get("/bottlenecks", h.ListBottlenecks)
	v1.Post("/passes", h.CreatePass)
}

func requestMetrics(m *observability.Metrics, logger zerolog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		elapsed := time.Since(start)
		route := c.Route().Path

		m.RecordRequest(c.Method(), route, status, elapsed)
		logger.Debug().
			Str("method", c.Method()).
			Str("route", route).
			Int("status", status).
			Dur("duration", elapsed).
			Msg("request")
		return err
	}
}

// Package api implements the HTTP surface over the taxonomy and dex cores.
// Handlers are thin: parse, call the pure core or the datastore, render.
package api

import (
	"log/slog"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/datastore"
	"github.com/tphakala/birddex/internal/logging"
	"github.com/tphakala/birddex/internal/observability"
	"github.com/tphakala/birddex/internal/taxonomy"
)

// searchCacheTTL bounds how stale an autocomplete response may be. The
// catalog is immutable per process, so this only limits cache growth.
const searchCacheTTL = 5 * time.Minute

// Controller manages the API routes and handlers.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Catalog  *taxonomy.Catalog
	Resolver *taxonomy.Resolver

	metrics     *observability.Metrics
	searchCache *cache.Cache
	logger      *slog.Logger

	// dexMu serializes dex read-modify-write cycles. The aggregation core
	// performs no concurrency control of its own, so the controller is the
	// single writer for this process.
	dexMu sync.Mutex
}

// New creates the API controller and registers all routes under /api/v1.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, catalog *taxonomy.Catalog, metrics *observability.Metrics) *Controller {
	logger := logging.ForService("api")
	if logger == nil {
		logger = slog.Default().With("service", "api")
	}

	resolver := taxonomy.NewResolverWithThreshold(catalog, settings.Taxonomy.FuzzyMinRatio)

	c := &Controller{
		Echo:        e,
		DS:          ds,
		Settings:    settings,
		Catalog:     catalog,
		Resolver:    resolver,
		metrics:     metrics,
		searchCache: cache.New(searchCacheTTL, searchCacheTTL*2),
		logger:      logger,
	}

	e.Use(middleware.Recover())

	c.Group = e.Group("/api/v1")
	c.initTaxonomyRoutes()
	c.initOutingRoutes()
	c.initDexRoutes()

	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	return c
}

// ErrorResponse is the JSON shape of all error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError logs the error and renders a uniform JSON error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	c.logger.Error(message,
		"path", ctx.Path(),
		"method", ctx.Request().Method,
		"status", code,
		"error", err)
	return ctx.JSON(code, ErrorResponse{Error: message})
}

// userID extracts the acting user from the request. Authentication is
// handled upstream; the deployment proxy injects the header.
func userID(ctx echo.Context) string {
	if id := ctx.Request().Header.Get("X-User-ID"); id != "" {
		return id
	}
	if id := ctx.QueryParam("user"); id != "" {
		return id
	}
	return "default"
}

// observe records a request duration when metrics are enabled.
func (c *Controller) observe(handler string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RequestDuration.WithLabelValues(handler).Observe(time.Since(start).Seconds())
	}
}

// Shutdown stops the HTTP server gracefully.
func (c *Controller) Shutdown() error {
	return c.Echo.Close()
}

package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ksalp/portal/docs"
	"github.com/ksalp/portal/internal/api/cookie"
	"github.com/ksalp/portal/internal/api/handler"
	"github.com/ksalp/portal/internal/api/middleware"
	"github.com/ksalp/portal/internal/core/ports"
	"github.com/ksalp/portal/internal/infrastructure/http/handlers"
)

// Dependencies are the services and settings the router wires into routes.
type Dependencies struct {
	Accounts     ports.AccountService
	Sessions     ports.SessionService
	Registration ports.RegistrationService
	Gate         ports.RequestGate
	Cookies      *cookie.Manager
	// Checks are the readiness probes by dependency name.
	Checks map[string]handlers.Check

	// TrustProxy honours X-Forwarded-For from private and loopback hops.
	TrustProxy   bool
	MaxBodyBytes int64
	Now          func() time.Time
	Log          zerolog.Logger
	// Registry receives the HTTP metrics and serves /metrics. Nil selects
	// the default registry, which also holds the portal counters.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	if deps.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "portal",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
	}))
	e.Use(middleware.Gate(deps.Gate))
	if deps.MaxBodyBytes > 0 {
		e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dB", deps.MaxBodyBytes)))
	}
	e.Use(middleware.Session(deps.Sessions, deps.Cookies))

	// --- Dependencies ---
	accountHandler := handler.NewAccountHandler(deps.Sessions, deps.Registration, deps.Cookies, deps.Now)
	settingsHandler := handler.NewSettingsHandler(deps.Accounts)
	requireLogin := middleware.RequireLogin()

	// --- Account routes ---
	v1 := e.Group("/api/v1")
	v1.GET("/constants", handler.Constants)

	account := v1.Group("/account")
	account.GET("", accountHandler.Account)
	account.POST("/signin", accountHandler.SignIn)
	account.POST("/register", accountHandler.Register)
	account.POST("/register/continue", accountHandler.RegisterContinue)
	account.POST("/logout", accountHandler.Logout)

	settings := account.Group("/settings", requireLogin)
	settings.POST("/theme", settingsHandler.Theme, middleware.RequirePremiumLite(deps.Now))
	settings.POST("/class_", settingsHandler.Class)
	settings.POST("/grade", settingsHandler.Grade)
	settings.POST("/search", settingsHandler.Search)
	settings.POST("/iframe", settingsHandler.IFrame)
	settings.POST("/password", settingsHandler.Password)
	settings.POST("/newsletter", settingsHandler.Newsletter)
	settings.POST("/favorites", settingsHandler.Favorites)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Debug()
			if v.Status >= 500 {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID)
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Msg("request served")
			return nil
		},
	})
}

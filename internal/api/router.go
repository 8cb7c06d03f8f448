package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/api/handler"
	"github.com/fleetpool/fleetdesk/internal/api/middleware"
	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/ports"
	"github.com/fleetpool/fleetdesk/internal/core/service"
	"github.com/fleetpool/fleetdesk/internal/pkg/validate"
)

// Deps are the collaborators the bridge exposes. Redis may be nil when the
// relay is disabled.
type Deps struct {
	Bus          *service.NotificationBus
	Monitor      *service.ConnectivityMonitor
	Session      *service.SessionStore
	Gate         *service.RoleGate
	Capabilities ports.CapabilityClient
	Redis        handler.RedisPinger

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "fleetdesk_bridge",
		Registerer: registerer(deps.Registry),
	}))

	// --- Dependencies ---
	notificationHandler := handler.NewNotificationHandler(deps.Bus)
	streamHandler := handler.NewStreamHandler(deps.Bus, log)
	sessionHandler := handler.NewSessionHandler(deps.Session, deps.Capabilities)
	signedIn := middleware.RequireRole(deps.Gate, deps.Session, domain.AllRoles...)

	// --- Notification routes ---
	v1 := e.Group("/v1")
	v1.GET("/notifications", notificationHandler.List)
	v1.POST("/notifications", notificationHandler.Publish)
	v1.DELETE("/notifications/:id", notificationHandler.Dismiss)
	v1.GET("/notifications/stream", streamHandler.Stream)

	// --- Session routes ---
	v1.GET("/session", sessionHandler.Get)
	v1.GET("/capabilities", sessionHandler.Capabilities, signedIn)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Monitor, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – is the platform reachable?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Registry),
	}))

	return e
}

func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return prometheus.DefaultRegisterer
	}
	return reg
}

func gatherer(reg *prometheus.Registry) prometheus.Gatherer {
	if reg == nil {
		return prometheus.DefaultGatherer
	}
	return reg
}

// requestLogger writes one zerolog line per request. The terminal belongs to
// the UI, so echo's default stdout logger is not used.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Debug()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("bridge request")
			return nil
		},
	})
}

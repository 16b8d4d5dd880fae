// Package bridge exposes a rover session to the simulator over WebSocket
// and to dashboards over WebSocket and HTTP.
package bridge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-rover/internal/log"
	"github.com/teslashibe/go-rover/pkg/hub"
	"github.com/teslashibe/go-rover/pkg/rover"
)

// Version is reported by /health.
const Version = "1.0.0"

// Options configures the server.
type Options struct {
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// Server runs one rover session behind a fiber app.
type Server struct {
	app       *fiber.App
	session   *rover.Session
	dashboard *hub.Hub
	logger    *slog.Logger

	simulators atomic.Int32

	// Stats
	telemetryReceived atomic.Uint64
	commandsSent      atomic.Uint64
	errorsSent        atomic.Uint64
}

// New creates a server for session. Call Listen (or use App in tests) to serve.
func New(session *rover.Session, opts Options) *Server {
	s := &Server{
		session:   session,
		dashboard: hub.New("dashboard"),
		logger:    log.Component("bridge"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-rover",
		DisableStartupMessage: true,
		BodyLimit:             8 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
	}))
	if opts.AccessLog {
		app.Use(logger.New())
	}

	s.registerRoutes(app)
	s.registerAPIRoutes(app.Group("/api"))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"version":    Version,
			"session":    s.session.ID,
			"simulators": s.simulators.Load(),
		})
	})

	s.app = app
	go s.dashboard.Run()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("bridge listening",
		"addr", addr,
		"telemetry", "/ws/telemetry",
		"dashboard", "/ws/dashboard")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for handlers up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.dashboard.Stop()
	return s.app.ShutdownWithContext(ctx)
}

// Stats contains bridge counters
type Stats struct {
	Simulators        int32  `json:"simulators"`
	DashboardClients  int    `json:"dashboard_clients"`
	TelemetryReceived uint64 `json:"telemetry_received"`
	CommandsSent      uint64 `json:"commands_sent"`
	ErrorsSent        uint64 `json:"errors_sent"`
	DroppedBroadcasts uint64 `json:"dropped_broadcasts"`
	Uptime            string `json:"uptime"`
}

// GetStats returns bridge counters
func (s *Server) GetStats() Stats {
	return Stats{
		Simulators:        s.simulators.Load(),
		DashboardClients:  s.dashboard.ClientCount(),
		TelemetryReceived: s.telemetryReceived.Load(),
		CommandsSent:      s.commandsSent.Load(),
		ErrorsSent:        s.errorsSent.Load(),
		DroppedBroadcasts: s.dashboard.Dropped(),
		Uptime:            time.Duration(s.session.Status().Uptime * float64(time.Second)).Round(time.Second).String(),
	}
}

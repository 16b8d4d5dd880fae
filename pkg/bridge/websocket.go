package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	contribws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-rover/pkg/hub"
	"github.com/teslashibe/go-rover/pkg/protocol"
	"github.com/teslashibe/go-rover/pkg/rover"
	"github.com/teslashibe/go-rover/pkg/vision"
)

// maxTelemetrySize bounds one telemetry message (base64 frame plus state).
const maxTelemetrySize = 4 * 1024 * 1024

// ErrUnsupportedMessage is sent back for message types the core does not accept.
var ErrUnsupportedMessage = errors.New("bridge: unsupported message type")

// registerRoutes registers WebSocket routes on a Fiber app
func (s *Server) registerRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if contribws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/telemetry", contribws.New(s.handleTelemetry))
	app.Get("/ws/telemetry/:id", contribws.New(s.handleTelemetry))
	app.Get("/ws/dashboard", websocket.New(s.handleDashboard))
}

// handleTelemetry runs one tick per telemetry message and answers each
// with a command or an error.
func (s *Server) handleTelemetry(c *contribws.Conn) {
	simID := c.Params("id")
	if simID == "" {
		simID = uuid.NewString()
	}
	logger := s.logger.With("simulator", simID)

	count := s.simulators.Add(1)
	logger.Info("simulator connected", "simulators", count)
	if count > 1 {
		logger.Warn("more than one simulator is driving the same session")
	}

	defer func() {
		count := s.simulators.Add(-1)
		logger.Info("simulator disconnected", "simulators", count)
	}()

	c.SetReadLimit(maxTelemetrySize)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if !contribws.IsCloseError(err, contribws.CloseNormalClosure, contribws.CloseGoingAway) {
				logger.Debug("read error", "error", err)
			}
			return
		}

		reply := s.handleMessage(data, logger)
		if reply == nil {
			continue
		}
		out, err := reply.Bytes()
		if err != nil {
			logger.Error("encode reply", "error", err)
			continue
		}
		if err := c.WriteMessage(contribws.TextMessage, out); err != nil {
			logger.Debug("write error", "error", err)
			return
		}
	}
}

// handleMessage processes one simulator message and returns the reply.
func (s *Server) handleMessage(data []byte, logger *slog.Logger) *protocol.Message {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		return s.errorReply(err, 0, logger)
	}

	switch msg.Type {
	case protocol.TypeTelemetry:
		s.telemetryReceived.Add(1)
		tel, err := msg.GetTelemetryData()
		if err != nil {
			return s.errorReply(err, 0, logger)
		}
		out, err := s.step(tel)
		if err != nil {
			return s.errorReply(err, tel.FrameID, logger)
		}
		s.broadcastStatus()

		reply, err := protocol.NewCommandMessage(protocol.CommandData{
			Throttle:   out.Throttle,
			Brake:      out.Brake,
			Steer:      out.Steer,
			Mode:       out.Mode.String(),
			SendPickup: out.SendPickup,
			FrameID:    tel.FrameID,
		})
		if err != nil {
			return s.errorReply(err, tel.FrameID, logger)
		}
		s.commandsSent.Add(1)
		return reply

	case protocol.TypePing:
		var id string
		if ping, err := msg.GetPingData(); err == nil {
			id = ping.ID
		}
		reply, err := protocol.NewPongMessage(id, msg.Timestamp, time.Now().UnixMilli())
		if err != nil {
			return s.errorReply(err, 0, logger)
		}
		return reply

	default:
		return s.errorReply(fmt.Errorf("%w: %q", ErrUnsupportedMessage, msg.Type), 0, logger)
	}
}

func (s *Server) step(tel *protocol.TelemetryData) (rover.Output, error) {
	raw, err := tel.DecodeImage()
	if err != nil {
		return rover.Output{}, fmt.Errorf("decode image: %w", err)
	}
	img, err := vision.DecodeFrame(raw)
	if err != nil {
		return rover.Output{}, err
	}
	return s.session.Step(rover.Telemetry{
		Image:     img,
		X:         tel.X,
		Y:         tel.Y,
		Yaw:       tel.Yaw,
		Velocity:  tel.Velocity,
		PickingUp: tel.PickingUp,
	})
}

func (s *Server) errorReply(err error, frameID uint64, logger *slog.Logger) *protocol.Message {
	logger.Warn("rejected message", "frame_id", frameID, "error", err)
	reply, mErr := protocol.NewErrorMessage(err, frameID)
	if mErr != nil {
		return nil
	}
	s.errorsSent.Add(1)
	return reply
}

// statusMessage encodes the current session status for dashboards.
func (s *Server) statusMessage() ([]byte, error) {
	msg, err := protocol.NewStatusMessage(s.session.Status())
	if err != nil {
		return nil, err
	}
	return msg.Bytes()
}

func (s *Server) broadcastStatus() {
	if s.dashboard.ClientCount() == 0 {
		return
	}
	data, err := s.statusMessage()
	if err != nil {
		s.logger.Error("encode status", "error", err)
		return
	}
	s.dashboard.Broadcast(hub.NewJSONMessage(data))
}

// handleDashboard streams a status message after every tick, starting with
// the current status.
func (s *Server) handleDashboard(c *websocket.Conn) {
	client := hub.NewClient(s.dashboard, c)
	if data, err := s.statusMessage(); err == nil {
		client.Queue(hub.NewJSONMessage(data))
	}
	client.Run()
}

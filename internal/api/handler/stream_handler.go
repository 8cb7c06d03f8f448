package handler

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fleetpool/fleetdesk/internal/api/metrics"
	"github.com/fleetpool/fleetdesk/internal/core/domain"
	"github.com/fleetpool/fleetdesk/internal/core/service"
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StreamSource is the part of the notification bus the stream follows.
type StreamSource interface {
	Subscribe(fn func(service.BusEvent)) (unsubscribe func())
	List() []domain.Notification
}

// StreamHandler pushes bus events to websocket clients as
// {"event": "app:notify" | "app:dismiss", "data": {...}} frames.
type StreamHandler struct {
	bus      StreamSource
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewStreamHandler(bus StreamSource, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log.With().Str("component", "stream").Logger(),
	}
}

// Stream upgrades the connection, replays the visible notifications and then
// follows the bus until the client goes away.
//
// @Summary      Follow notification events
// @Tags         notifications
// @Success      101
// @Router       /v1/notifications/stream [get]
func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already answered the client.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	send := make(chan domain.BusMessage, sendBuffer)
	unsubscribe := h.bus.Subscribe(func(ev service.BusEvent) {
		select {
		case send <- ev.Message():
		default:
			h.log.Warn().Str("id", ev.Notification.ID).Msg("stream client too slow, event dropped")
		}
	})
	defer unsubscribe()

	// Subscribed first, so anything published meanwhile is either in the
	// snapshot or queued; replayed IDs are skipped once when they show up live.
	snapshot := h.bus.List()
	replayed := make(map[string]struct{}, len(snapshot))
	for _, n := range snapshot {
		replayed[n.ID] = struct{}{}
		if err := writeMessage(conn, domain.BusMessage{Event: domain.EventNotify, Data: n.Payload()}); err != nil {
			return nil
		}
	}

	closed := make(chan struct{})
	go readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case msg := <-send:
			if _, ok := replayed[msg.Data.ID]; ok && msg.Event == domain.EventNotify {
				delete(replayed, msg.Data.ID)
				continue
			}
			if err := writeMessage(conn, msg); err != nil {
				h.log.Debug().Err(err).Msg("websocket write failed")
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg domain.BusMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump discards client frames and closes done when the connection ends.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}


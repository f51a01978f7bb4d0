package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/phrazzld/taskboard-api/internal/events"
)

// eventMessage is the wire envelope pushed to connected clients.
type eventMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// deletedPayload is the data carried by a task.deleted message. Only the
// identifier survives deletion, so the full task is never sent.
type deletedPayload struct {
	ID string `json:"id"`
}

// Hub maintains the set of active clients and fans broadcast messages out to
// all of them. It also implements events.Handler so the task service can feed
// it directly.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger

	// done is closed when Run returns so client goroutines stop trying to
	// reach the hub after shutdown.
	done chan struct{}

	// clientCount mirrors len(clients) for observation from outside the
	// Run goroutine.
	clientCount atomic.Int64
}

// ClientCount reports the number of currently registered clients.
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// NewHub creates a Hub. The logger must not be nil.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		panic("ws.NewHub: logger cannot be nil")
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "ws_hub")),
	}
}

// Run processes register, unregister and broadcast events until the context
// is canceled, then closes every remaining client connection. It must be
// started exactly once, before the hub handles any connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientCount.Store(0)
			h.logger.Info("websocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.clientCount.Store(int64(len(h.clients)))
			h.logger.Debug("websocket client connected",
				slog.String("user_id", client.userID),
				slog.Int("total_clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.clientCount.Store(int64(len(h.clients)))
				h.logger.Debug("websocket client disconnected",
					slog.String("user_id", client.userID),
					slog.Int("total_clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer. Drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
					h.clientCount.Store(int64(len(h.clients)))
					h.logger.Warn("dropping slow websocket client",
						slog.String("user_id", client.userID))
				}
			}
		}
	}
}

// HandleTaskEvent implements events.Handler. It serializes the event into the
// wire envelope and queues it for fan-out to every connected client.
func (h *Hub) HandleTaskEvent(ctx context.Context, event *events.TaskEvent) {
	msg := eventMessage{Event: event.Kind}
	if event.Kind == events.TaskDeleted {
		msg.Data = deletedPayload{ID: event.TaskID.String()}
	} else {
		msg.Data = event.Task
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal task event",
			slog.String("event", event.Kind),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.done:
	case <-ctx.Done():
	}
}

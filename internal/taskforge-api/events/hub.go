// Copyright 2025 The TaskForge Authors
// SPDX-License-Identifier: Apache-2.0

// Package events broadcasts queue activity to websocket subscribers.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one queue notification pushed to subscribers.
type Event struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types.
const (
	TypeTaskSubmitted     = "task_submitted"
	TypeTaskStatusChanged = "task_status_changed"
	TypeTaskCancelled     = "task_cancelled"
	TypeTaskRetried       = "task_retried"
	TypeWorkflowSubmitted = "workflow_submitted"
	TypeWorkflowUpdated   = "workflow_updated"
)

const clientBuffer = 16

// Hub fans events out to connected websocket clients. Clients that cannot
// keep up are dropped.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. Run must be started for events to flow.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, 64),
		logger:     logger.With("component", "events"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run pumps events to clients until the broadcast channel is drained and
// the context owner stops publishing. Start it in its own goroutine.
func (h *Hub) Run() {
	clients := make(map[*client]struct{})
	for {
		select {
		case c := <-h.register:
			clients[c] = struct{}{}
			h.logger.Debug("websocket client connected", "clients", len(clients))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
			}
		case event := <-h.broadcast:
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode event", "error", err)
				continue
			}
			for c := range clients {
				select {
				case c.send <- payload:
				default:
					// Slow client, drop it.
					delete(clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish queues an event for broadcast. It never blocks; when the hub is
// saturated the event is dropped.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event dropped, broadcast buffer full", "type", event.Type)
	}
}

// ServeHTTP upgrades the connection and streams events to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.register <- c

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			break
		}
	}
	_ = c.conn.Close()
}

// readPump discards client messages and unregisters on disconnect.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Package remote lets websocket clients follow and steer a viewer. Viewer
// events are broadcast to every client as JSON messages; commands sent by
// clients are queued and applied on the render loop.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the JSON frame exchanged with clients
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrClosed is returned by Broadcast after Close
var ErrClosed = errors.New("remote: hub closed")

const commandQueue = 64

// Hub tracks connected clients
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	closed  bool

	commands chan Message
	plugin   pluginState
}

// NewHub creates a hub accepting connections from any origin
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:  map[*websocket.Conn]bool{},
		commands: make(chan Message, commandQueue),
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "component", "remote", "err", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = true
	h.mu.Unlock()
	slog.Info("remote client connected", "component", "remote", "addr", conn.RemoteAddr())

	defer func() {
		h.drop(conn)
		slog.Info("remote client disconnected", "component", "remote", "addr", conn.RemoteAddr())
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			var syntax *json.SyntaxError
			var typ *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &typ) {
				slog.Warn("invalid remote message", "component", "remote", "err", err)
				continue
			}
			return
		}
		select {
		case h.commands <- msg:
		default:
			slog.Warn("remote command queue full, dropping command", "component", "remote", "type", msg.Type)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Commands returns the queue of messages received from clients
func (h *Hub) Commands() <-chan Message { return h.commands }

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends a message of type typ with v as data to every client.
// Clients that fail to receive it are disconnected.
func (h *Hub) Broadcast(typ string, v any) error {
	msg := Message{Type: typ}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("remote: marshal %s: %w", typ, err)
		}
		msg.Data = data
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("remote: marshal %s: %w", typ, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			slog.Warn("websocket write failed", "component", "remote", "addr", conn.RemoteAddr(), "err", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

// Close disconnects every client
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for conn := range h.clients {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}
	clear(h.clients)
	return nil
}

// Serve listens on addr and serves the hub under /ws until ctx is done
func Serve(ctx context.Context, addr string, h *Hub) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("remote: listen %s: %w", addr, err)
	}
	return serve(ctx, ln, h)
}

func serve(ctx context.Context, ln net.Listener, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	stop := context.AfterFunc(ctx, func() {
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	})
	defer stop()

	slog.Info("remote control listening", "component", "remote", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

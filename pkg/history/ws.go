package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// Frame ops exchanged with the browser tab.
const (
	OpHello    = "hello"
	OpPopState = "popstate"
	OpPush     = "push"
	OpReplace  = "replace"
	OpGo       = "go"
	OpActive   = "active"
	OpError    = "error"
)

// ErrHostClosed is returned by WSHost writes after the connection closed.
var ErrHostClosed = errors.New("history: host closed")

// Frame is a JSON message on the history bridge.
type Frame struct {
	Op       string `json:"op"`
	Location string `json:"location,omitempty"`
	Delta    int    `json:"delta,omitempty"`

	// Render fields, sent with OpActive and OpError.
	Route     string            `json:"route,omitempty"`
	Component string            `json:"component,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	Props     map[string]any    `json:"props,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// WSConfig holds WebSocket host timeouts and limits.
type WSConfig struct {
	// ReadTimeout is the maximum time to wait for a message or pong.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between pings.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming frame.
	MaxMessageSize int64

	// Logger receives bridge diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultWSConfig returns a WSConfig with sensible defaults.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    16 * 1024,
	}
}

// WSHost is a Host backed by a browser tab connected over a WebSocket.
//
// The tab reports its location with a hello frame after connecting and a
// popstate frame whenever the user goes back, forward or edits the address.
// Writes are sent as push, replace and go frames; the tab applies them with
// the History API, which does not fire popstate.
type WSHost struct {
	conn   *websocket.Conn
	config WSConfig
	logger *slog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	location  string
	listeners map[int]func(string)
	nextID    int

	hello     chan struct{}
	helloOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// NewWSHost wraps an upgraded connection. Call Run to start processing.
func NewWSHost(conn *websocket.Conn, config WSConfig) *WSHost {
	defaults := DefaultWSConfig()
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WSHost{
		conn:      conn,
		config:    config,
		logger:    logger.With("component", "ws-host", "remote", conn.RemoteAddr().String()),
		location:  "#/",
		listeners: make(map[int]func(string)),
		hello:     make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run processes frames until the connection closes or ctx is done.
func (h *WSHost) Run(ctx context.Context) {
	defer h.Close()

	go h.heartbeat()
	go func() {
		select {
		case <-ctx.Done():
			h.Close()
		case <-h.done:
		}
	}()

	h.conn.SetReadLimit(h.config.MaxMessageSize)
	h.conn.SetPongHandler(func(string) error {
		return h.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})

	for {
		h.conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))

		_, msg, err := h.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Error("read error", "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			h.logger.Warn("frame decode error", "error", err)
			continue
		}
		h.handleFrame(frame)
	}
}

func (h *WSHost) handleFrame(frame Frame) {
	switch frame.Op {
	case OpHello, OpPopState:
		loc, err := routepath.ValidateNavLocation(frame.Location)
		if err != nil {
			h.logger.Warn("rejected location", "op", frame.Op, "location", frame.Location, "error", err)
			return
		}
		location := loc.Fragment()

		h.mu.Lock()
		h.location = location
		h.mu.Unlock()

		if frame.Op == OpHello {
			h.helloOnce.Do(func() { close(h.hello) })
			return
		}
		h.notify(location)

	default:
		h.logger.Warn("unknown frame op", "op", frame.Op)
	}
}

func (h *WSHost) heartbeat() {
	ticker := time.NewTicker(h.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.writeMu.Lock()
			err := h.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.config.WriteTimeout))
			h.writeMu.Unlock()
			if err != nil {
				h.logger.Debug("ping error", "error", err)
				h.Close()
				return
			}
		case <-h.done:
			return
		}
	}
}

// Hello is closed once the tab has reported its initial location.
func (h *WSHost) Hello() <-chan struct{} {
	return h.hello
}

// Done is closed when the connection is closed.
func (h *WSHost) Done() <-chan struct{} {
	return h.done
}

// Close closes the connection. It is safe to call more than once.
func (h *WSHost) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.done)
		h.writeMu.Lock()
		h.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(h.config.WriteTimeout))
		h.writeMu.Unlock()
		err = h.conn.Close()
	})
	return err
}

// Location implements Host.
func (h *WSHost) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.location
}

// Push implements Host.
func (h *WSHost) Push(location string) error {
	if err := h.write(Frame{Op: OpPush, Location: location}); err != nil {
		return err
	}
	h.setLocation(location)
	return nil
}

// Replace implements Host.
func (h *WSHost) Replace(location string) error {
	if err := h.write(Frame{Op: OpReplace, Location: location}); err != nil {
		return err
	}
	h.setLocation(location)
	return nil
}

// Go implements Host. The tab answers with a popstate frame.
func (h *WSHost) Go(delta int) error {
	return h.write(Frame{Op: OpGo, Delta: delta})
}

// Render sends an active or error frame describing the current view.
func (h *WSHost) Render(frame Frame) error {
	if frame.Op != OpActive && frame.Op != OpError {
		return fmt.Errorf("history: render op must be %q or %q, got %q", OpActive, OpError, frame.Op)
	}
	return h.write(frame)
}

// Listen implements Host.
func (h *WSHost) Listen(fn func(location string)) (stop func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

func (h *WSHost) setLocation(location string) {
	h.mu.Lock()
	h.location = location
	h.mu.Unlock()
}

func (h *WSHost) write(frame Frame) error {
	select {
	case <-h.done:
		return ErrHostClosed
	default:
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	h.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	if err := h.conn.WriteJSON(frame); err != nil {
		h.logger.Error("write error", "op", frame.Op, "error", err)
		return err
	}
	return nil
}

func (h *WSHost) notify(location string) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(string), len(ids))
	for i, id := range ids {
		fns[i] = h.listeners[id]
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(location)
	}
}

// Package websocket implements the journal.Backend interface by streaming records to a
// remote collector. Session boundaries are acknowledged by the server; vehicles and
// events are fire-and-forget.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/pkg/core"
	"github.com/LVPlayground/gamemode/pkg/streaming"
)

// ErrNoSession is returned when records arrive before StartSession.
var ErrNoSession = errors.New("no journal session started")

// Backend streams journal records over WebSocket.
type Backend struct {
	conn *connection
	cfg  config.WebSocketConfig

	mu        sync.Mutex
	sessionID string
}

// New creates a new WebSocket journal backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload and pushes it to the write loop.
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	if !b.hasSession() {
		return ErrNoSession
	}
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.send(data)
}

func (b *Backend) hasSession() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID != ""
}

// StartSession announces the session and waits for the server ack.
func (b *Backend) StartSession(session *core.Session) error {
	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.StartSessionPayload{Session: session})
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	if err := b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout); err != nil {
		return err
	}

	b.mu.Lock()
	b.sessionID = session.ID
	b.mu.Unlock()
	return nil
}

// EndSession sends end_session and waits for the server ack.
func (b *Backend) EndSession(end time.Time) error {
	b.mu.Lock()
	id := b.sessionID
	b.sessionID = ""
	b.mu.Unlock()
	if id == "" {
		return ErrNoSession
	}

	data, err := marshalEnvelope(streaming.TypeEndSession, streaming.EndSessionPayload{SessionID: id, EndTime: end})
	if err == nil {
		err = b.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)
	}

	// cleared regardless of error
	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordVehicle(v *core.Vehicle) error {
	return b.sendEnvelope(streaming.TypeVehicle, v)
}

func (b *Backend) RecordEvent(e *core.VehicleEvent) error {
	return b.sendEnvelope(streaming.TypeVehicleEvent, e)
}

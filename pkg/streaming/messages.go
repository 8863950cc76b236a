// Package streaming defines the wire messages of the journal streaming protocol.
// Every message is a JSON Envelope sent as one WebSocket text frame.
package streaming

import (
	"encoding/json"
	"time"

	"github.com/LVPlayground/gamemode/pkg/core"
)

// Message type constants of the journal streaming protocol.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeVehicle      = "vehicle"
	TypeVehicleEvent = "vehicle_event"

	TypeAck = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`
}

// StartSessionPayload announces a new gamemode session. It is acknowledged.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
}

// EndSessionPayload closes the session. It is acknowledged.
type EndSessionPayload struct {
	SessionID string    `json:"sessionId"`
	EndTime   time.Time `json:"endTime"`
}

// VehiclePayload carries a vehicle snapshot.
type VehiclePayload = core.Vehicle

// VehicleEventPayload carries one lifecycle event.
type VehicleEventPayload = core.VehicleEvent

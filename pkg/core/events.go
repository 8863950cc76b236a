// pkg/core/events.go
package core

import "time"

// EventType identifies the kind of vehicle activity in the journal.
type EventType string

const (
	EventCreated  EventType = "created"
	EventDisposed EventType = "disposed"
	EventSpawn    EventType = "spawn"
	EventDeath    EventType = "death"
	EventAttached EventType = "trailer_attached"
	EventDetached EventType = "trailer_detached"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventCreated, EventDisposed, EventSpawn, EventDeath, EventAttached, EventDetached:
		return true
	}
	return false
}

// VehicleEvent is one journal entry.
// For coupling events VehicleID is the towing vehicle and TrailerID the towed one.
type VehicleEvent struct {
	SessionID string     `json:"sessionId"`
	Time      time.Time  `json:"time"`
	Type      EventType  `json:"type"`
	VehicleID uint16     `json:"vehicleId"`
	TrailerID *uint16    `json:"trailerId,omitempty"`
	ModelID   int        `json:"modelId"`
	Position  Position3D `json:"position"`
}

// Session identifies one run of the gamemode; journal rows are grouped by it.
type Session struct {
	ID         string    `json:"id"`
	ServerName string    `json:"serverName"`
	StartTime  time.Time `json:"startTime"`
	Version    string    `json:"version"`
}

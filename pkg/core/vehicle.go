// pkg/core/vehicle.go
package core

import "time"

// Position3D is a world position as reported by the host.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vehicle is a point-in-time snapshot of a registered vehicle.
// ID is the host-assigned vehicle id.
type Vehicle struct {
	ID             uint16     `json:"id"`
	SessionID      string     `json:"sessionId"`
	Time           time.Time  `json:"time"`
	ModelID        int        `json:"modelId"`
	Position       Position3D `json:"position"`
	Rotation       float64    `json:"rotation"`
	PrimaryColor   int        `json:"primaryColor"`
	SecondaryColor int        `json:"secondaryColor"`
	Siren          bool       `json:"siren"`
	Paintjob       int        `json:"paintjob"`
	InteriorID     int        `json:"interiorId"`
	VirtualWorld   int        `json:"virtualWorld"`
	TrailerID      *uint16    `json:"trailerId,omitempty"`
	ParentID       *uint16    `json:"parentId,omitempty"`
}

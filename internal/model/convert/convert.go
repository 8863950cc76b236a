package convert

import (
	"github.com/LVPlayground/gamemode/internal/geo"
	"github.com/LVPlayground/gamemode/internal/model"
	"github.com/LVPlayground/gamemode/pkg/core"
)

// SessionToCore converts a GORM Session to a core.Session.
func SessionToCore(s model.Session) core.Session {
	return core.Session{
		ID:         s.ID,
		ServerName: s.ServerName,
		StartTime:  s.StartTime,
		Version:    s.Version,
	}
}

// VehicleToCore converts a GORM Vehicle back to the snapshot it was written from.
// GORM Vehicle.VehicleID maps to core Vehicle.ID.
func VehicleToCore(v model.Vehicle) core.Vehicle {
	return core.Vehicle{
		ID:             v.VehicleID,
		SessionID:      v.SessionID,
		Time:           v.Time,
		ModelID:        int(v.ModelID),
		Position:       geo.PositionFromPoint(v.Position),
		Rotation:       float64(v.Rotation),
		PrimaryColor:   int(v.PrimaryColor),
		SecondaryColor: int(v.SecondaryColor),
		Siren:          v.Siren,
		Paintjob:       int(v.Paintjob),
		InteriorID:     int(v.InteriorID),
		VirtualWorld:   int(v.VirtualWorld),
		TrailerID:      v.TrailerID,
		ParentID:       v.ParentID,
	}
}

// VehicleEventToCore converts a GORM VehicleEvent to a core.VehicleEvent.
func VehicleEventToCore(e model.VehicleEvent) core.VehicleEvent {
	return core.VehicleEvent{
		SessionID: e.SessionID,
		Time:      e.Time,
		Type:      core.EventType(e.EventType),
		VehicleID: e.VehicleID,
		TrailerID: e.TrailerID,
		ModelID:   int(e.ModelID),
		Position:  geo.PositionFromPoint(e.Position),
	}
}

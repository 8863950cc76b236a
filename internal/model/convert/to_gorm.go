// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/LVPlayground/gamemode/internal/geo"
	"github.com/LVPlayground/gamemode/internal/model"
	"github.com/LVPlayground/gamemode/pkg/core"
	"gorm.io/datatypes"
)

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	return model.Session{
		ID:         s.ID,
		ServerName: s.ServerName,
		Version:    s.Version,
		StartTime:  s.StartTime,
	}
}

// CoreToVehicle converts a core.Vehicle snapshot to a GORM model.Vehicle.
// The whole snapshot is also kept as JSON.
func CoreToVehicle(v core.Vehicle) model.Vehicle {
	snapshot, err := json.Marshal(v)
	if err != nil {
		snapshot = []byte("{}")
	}

	return model.Vehicle{
		Time:           v.Time,
		SessionID:      v.SessionID,
		VehicleID:      v.ID,
		ModelID:        uint16(v.ModelID),
		Position:       geo.PointFromPosition(v.Position),
		Rotation:       float32(v.Rotation),
		PrimaryColor:   int16(v.PrimaryColor),
		SecondaryColor: int16(v.SecondaryColor),
		Siren:          v.Siren,
		Paintjob:       uint8(v.Paintjob),
		InteriorID:     uint8(v.InteriorID),
		VirtualWorld:   int32(v.VirtualWorld),
		TrailerID:      v.TrailerID,
		ParentID:       v.ParentID,
		Snapshot:       datatypes.JSON(snapshot),
	}
}

// CoreToVehicleEvent converts a core.VehicleEvent to a GORM model.VehicleEvent.
func CoreToVehicleEvent(e core.VehicleEvent) model.VehicleEvent {
	return model.VehicleEvent{
		Time:      e.Time,
		SessionID: e.SessionID,
		EventType: string(e.Type),
		VehicleID: e.VehicleID,
		TrailerID: e.TrailerID,
		ModelID:   uint16(e.ModelID),
		Position:  geo.PointFromPosition(e.Position),
	}
}

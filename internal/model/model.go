// Package model holds the gorm rows of the vehicle journal.
package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// DatabaseModels lists every table of the journal schema in migration order.
var DatabaseModels = []any{
	&Session{},
	&Vehicle{},
	&VehicleEvent{},
}

// Session is one run of the gamemode. Every other row references it.
type Session struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	ServerName string     `json:"serverName" gorm:"size:127"`
	Version    string     `json:"version" gorm:"size:32"`
	StartTime  time.Time  `json:"startTime" gorm:"NOT NULL;index:idx_session_start_time"`
	EndTime    *time.Time `json:"endTime"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Vehicle is a snapshot of a registered vehicle, written when it is created.
// References Session by SessionID.
type Vehicle struct {
	ID             uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time      `json:"time" gorm:"index:idx_vehicle_time"`
	SessionID      string         `json:"sessionId" gorm:"size:36;index:idx_vehicle_session_id"`
	Session        Session        `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	VehicleID      uint16         `json:"vehicleId" gorm:"index:idx_vehicle_vehicle_id"` // host-assigned id, reused after dispose
	ModelID        uint16         `json:"modelId"`
	Position       geom.Point     `json:"position"`
	Rotation       float32        `json:"rotation"`
	PrimaryColor   int16          `json:"primaryColor"`
	SecondaryColor int16          `json:"secondaryColor"`
	Siren          bool           `json:"siren"`
	Paintjob       uint8          `json:"paintjob"`
	InteriorID     uint8          `json:"interiorId"`
	VirtualWorld   int32          `json:"virtualWorld"`
	TrailerID      *uint16        `json:"trailerId"`
	ParentID       *uint16        `json:"parentId"`
	Snapshot       datatypes.JSON `json:"snapshot"` // full snapshot as received
}

func (*Vehicle) TableName() string {
	return "vehicles"
}

// VehicleEvent is one lifecycle or coupling event.
// For coupling events VehicleID is the towing vehicle and TrailerID the towed one.
type VehicleEvent struct {
	ID        uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time  `json:"time" gorm:"index:idx_vehicleevent_time"`
	SessionID string     `json:"sessionId" gorm:"size:36;index:idx_vehicleevent_session_id"`
	Session   Session    `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	EventType string     `json:"eventType" gorm:"size:32;index:idx_vehicleevent_type"`
	VehicleID uint16     `json:"vehicleId" gorm:"index:idx_vehicleevent_vehicle_id"`
	TrailerID *uint16    `json:"trailerId"`
	ModelID   uint16     `json:"modelId"`
	Position  geom.Point `json:"position"`
}

func (*VehicleEvent) TableName() string {
	return "vehicle_events"
}

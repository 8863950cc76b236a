package gormjournal

import (
	"fmt"

	"github.com/LVPlayground/gamemode/internal/model"
	"github.com/LVPlayground/gamemode/internal/model/convert"
	"github.com/LVPlayground/gamemode/pkg/core"
	"gorm.io/gorm"
)

// SessionLog is everything journaled for one session.
type SessionLog struct {
	Session  core.Session        `json:"session"`
	Vehicles []core.Vehicle      `json:"vehicles"`
	Events   []core.VehicleEvent `json:"events"`
}

// Sessions lists the journaled sessions, oldest first.
func Sessions(db *gorm.DB) ([]core.Session, error) {
	var rows []model.Session
	if err := db.Order("start_time, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sessions := make([]core.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, convert.SessionToCore(row))
	}
	return sessions, nil
}

// ReadSession loads one session with its vehicles and events in insertion order.
func ReadSession(db *gorm.DB, sessionID string) (SessionLog, error) {
	var session model.Session
	if err := db.First(&session, "id = ?", sessionID).Error; err != nil {
		return SessionLog{}, fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}

	var vehicles []model.Vehicle
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&vehicles).Error; err != nil {
		return SessionLog{}, fmt.Errorf("failed to load vehicles: %w", err)
	}

	var events []model.VehicleEvent
	if err := db.Where("session_id = ?", sessionID).Order("id").Find(&events).Error; err != nil {
		return SessionLog{}, fmt.Errorf("failed to load events: %w", err)
	}

	log := SessionLog{
		Session:  convert.SessionToCore(session),
		Vehicles: make([]core.Vehicle, 0, len(vehicles)),
		Events:   make([]core.VehicleEvent, 0, len(events)),
	}
	for _, v := range vehicles {
		log.Vehicles = append(log.Vehicles, convert.VehicleToCore(v))
	}
	for _, e := range events {
		log.Events = append(log.Events, convert.VehicleEventToCore(e))
	}
	return log, nil
}

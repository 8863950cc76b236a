// Package memory keeps the journal in process and exports it as JSON when the session ends.
package memory

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/config"
	"github.com/LVPlayground/gamemode/pkg/core"
)

// ErrNoSession is returned when records arrive before StartSession.
var ErrNoSession = errors.New("no journal session started")

// VehicleRecord groups a vehicle snapshot with every event it took part in
type VehicleRecord struct {
	Vehicle core.Vehicle
	Events  []core.VehicleEvent
}

// Backend stores journal data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	session *core.Session
	endTime time.Time

	// vehicles are keyed by host id; a reused id starts a new record
	vehicles map[uint16]*VehicleRecord
	history  []*VehicleRecord
	events   []core.VehicleEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		vehicles: make(map[uint16]*VehicleRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins a new session and forgets the previous one
func (b *Backend) StartSession(session *core.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = session
	b.endTime = time.Time{}
	b.vehicles = make(map[uint16]*VehicleRecord)
	b.history = nil
	b.events = nil
	b.lastExportPath = ""
	return nil
}

// EndSession exports the session when an output directory is configured
func (b *Backend) EndSession(end time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	b.endTime = end
	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.exportJSON()
}

// RecordVehicle opens a new record for the vehicle
func (b *Backend) RecordVehicle(v *core.Vehicle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	record := &VehicleRecord{Vehicle: *v}
	b.vehicles[v.ID] = record
	b.history = append(b.history, record)
	return nil
}

// RecordEvent appends the event to the session and to the vehicles involved
func (b *Backend) RecordEvent(e *core.VehicleEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	b.events = append(b.events, *e)
	if record, ok := b.vehicles[e.VehicleID]; ok {
		record.Events = append(record.Events, *e)
	}
	if e.TrailerID != nil {
		if record, ok := b.vehicles[*e.TrailerID]; ok {
			record.Events = append(record.Events, *e)
		}
	}
	return nil
}

// Events returns a copy of every event recorded this session, in order
func (b *Backend) Events() []core.VehicleEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.events)
}

// GetVehicle returns the current record for a host id
func (b *Backend) GetVehicle(id uint16) (VehicleRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	record, ok := b.vehicles[id]
	if !ok {
		return VehicleRecord{}, false
	}
	return VehicleRecord{Vehicle: record.Vehicle, Events: slices.Clone(record.Events)}, true
}

// ExportedFilePath returns the file written by the last EndSession
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

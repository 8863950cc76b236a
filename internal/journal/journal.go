// Package journal keeps an append-only audit trail of vehicle activity.
//
// A Recorder observes the vehicle manager on the game thread and hands records to a background
// writer, which flushes them to a Backend in batches. Nothing in the journal is ever read back
// into the registry.
package journal

import (
	"time"

	"github.com/LVPlayground/gamemode/pkg/core"
)

// Backend is the interface all journal implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(session *core.Session) error
	EndSession(end time.Time) error

	// Recording
	RecordVehicle(v *core.Vehicle) error
	RecordEvent(e *core.VehicleEvent) error
}

// Exporter is an optional interface for backends that produce a file when the session ends.
type Exporter interface {
	ExportedFilePath() string
}

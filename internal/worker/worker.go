package worker

import (
	"errors"
	"log/slog"

	"github.com/LVPlayground/gamemode/internal/parser"
	"github.com/LVPlayground/gamemode/internal/vehicle"
)

// Host commands handled by the worker.
const (
	CommandTrailer = ":VEHICLE:TRAILER:"
	CommandSpawn   = ":VEHICLE:SPAWN:"
	CommandDeath   = ":VEHICLE:DEATH:"
	CommandCreate  = ":VEHICLE:CREATE:"
	CommandDestroy = ":VEHICLE:DESTROY:"
	CommandCount   = ":VEHICLE:COUNT:"
	CommandInfo    = ":VEHICLE:INFO:"
)

// ErrUnknownVehicle is returned by synchronous commands naming a vehicle the gamemode does not own.
var ErrUnknownVehicle = errors.New("unknown vehicle")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Vehicles      *vehicle.Manager
	ParserService *parser.Parser
	Logger        *slog.Logger
}

// Manager maps host commands onto the vehicle manager
type Manager struct {
	deps Dependencies
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{deps: deps}
}

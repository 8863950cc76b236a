package worker

import (
	"fmt"

	"github.com/LVPlayground/gamemode/internal/dispatcher"
	"github.com/LVPlayground/gamemode/internal/vehicle"
)

// RegisterHandlers registers all vehicle commands with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Host notifications - queued, applied in arrival order
	d.Register(CommandTrailer, m.handleTrailerUpdate, dispatcher.Queued(), dispatcher.Logged())
	d.Register(CommandSpawn, m.handleSpawn, dispatcher.Queued(), dispatcher.Logged())
	d.Register(CommandDeath, m.handleDeath, dispatcher.Queued(), dispatcher.Logged())

	// Requests - sync, the caller needs the result
	d.Register(CommandCreate, m.handleCreate, dispatcher.Logged())
	d.Register(CommandDestroy, m.handleDestroy, dispatcher.Logged())
	d.Register(CommandCount, m.handleCount)
	d.Register(CommandInfo, m.handleInfo, dispatcher.Logged())
}

func (m *Manager) handleTrailerUpdate(e dispatcher.Event) (any, error) {
	vehicleID, trailerID, err := m.deps.ParserService.ParseTrailerUpdate(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trailer update: %w", err)
	}
	if err := m.deps.Vehicles.ReportTrailerUpdate(vehicleID, trailerID); err != nil {
		return nil, fmt.Errorf("failed to apply trailer update: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleSpawn(e dispatcher.Event) (any, error) {
	v, err := m.lookup(e.Args)
	if err != nil || v == nil {
		return nil, err
	}
	return nil, v.Spawn()
}

func (m *Manager) handleDeath(e dispatcher.Event) (any, error) {
	v, err := m.lookup(e.Args)
	if err != nil || v == nil {
		return nil, err
	}
	return nil, v.Death()
}

// lookup resolves data[0] to a registered vehicle. Vehicles owned by someone else resolve
// to nil without an error.
func (m *Manager) lookup(args []string) (*vehicle.Vehicle, error) {
	id, err := m.deps.ParserService.ParseVehicleID(args)
	if err != nil {
		return nil, err
	}
	v, ok := m.deps.Vehicles.GetByID(id)
	if !ok {
		m.deps.Logger.Debug("Ignoring event for unknown vehicle", "vehicleId", id)
		return nil, nil
	}
	return v, nil
}

func (m *Manager) handleCreate(e dispatcher.Event) (any, error) {
	d, err := m.deps.ParserService.ParseDescriptor(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle: %w", err)
	}

	v, err := m.deps.Vehicles.CreateVehicle(d)
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return int(v.ID()), nil
}

func (m *Manager) handleDestroy(e dispatcher.Event) (any, error) {
	id, err := m.deps.ParserService.ParseVehicleID(e.Args)
	if err != nil {
		return nil, err
	}
	v, ok := m.deps.Vehicles.GetByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVehicle, id)
	}
	v.Dispose()
	return nil, nil
}

func (m *Manager) handleCount(e dispatcher.Event) (any, error) {
	return m.deps.Vehicles.Count(), nil
}

func (m *Manager) handleInfo(e dispatcher.Event) (any, error) {
	id, err := m.deps.ParserService.ParseVehicleID(e.Args)
	if err != nil {
		return nil, err
	}
	v, ok := m.deps.Vehicles.GetByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVehicle, id)
	}

	snapshot := v.Snapshot()
	snapshot.Time = e.Timestamp
	return snapshot, nil
}

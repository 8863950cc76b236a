// Package vehicle keeps the gamemode's registry of host vehicles, the trailer couplings
// between them and the observers interested in their lifecycle.
//
// The Manager holds no locks. Every call must come from one logical thread; the
// dispatcher package provides that thread for host callbacks.
package vehicle

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
)

// Dependencies are the collaborators a Manager needs.
type Dependencies struct {
	Host   Host
	Logger *slog.Logger
}

// Manager owns every gamemode-created vehicle.
type Manager struct {
	host      Host
	logger    *slog.Logger
	metrics   *metrics
	vehicles  map[ID]*Vehicle
	observers observerSet
	disposed  bool
}

// NewManager creates a Manager. Metrics go to the global OTel meter provider
// (no-op if not configured).
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Host == nil {
		return nil, fmt.Errorf("vehicle manager requires a host")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	return &Manager{
		host:      deps.Host,
		logger:    logger,
		metrics:   m,
		vehicles:  make(map[ID]*Vehicle),
		observers: newObserverSet(),
	}, nil
}

// CreateVehicle validates d, asks the host for a vehicle and registers it.
func (m *Manager) CreateVehicle(d Descriptor) (*Vehicle, error) {
	if m.disposed {
		return nil, ErrManagerDisposed
	}

	d, err := d.normalize()
	if err != nil {
		return nil, err
	}

	id, err := m.host.CreateVehicle(d)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrHostCreationFailure, err)
	case id == InvalidID:
		err = fmt.Errorf("%w: host returned the invalid id", ErrHostCreationFailure)
	case m.vehicles[id] != nil:
		err = fmt.Errorf("%w: host returned id %d which is still registered", ErrHostCreationFailure, id)
	}
	if err != nil {
		m.metrics.hostFailures.Add(context.Background(), 1)
		m.logger.Warn("vehicle creation failed", "modelId", d.ModelID, "error", err)
		return nil, err
	}

	v := newVehicle(m, id, d)
	m.vehicles[id] = v

	m.metrics.created.Add(context.Background(), 1)
	m.metrics.active.Add(context.Background(), 1)
	m.logger.Debug("vehicle created", "vehicle", v)

	m.notifyLifecycle("created", func(o LifecycleObserver) { o.OnVehicleCreated(v) })
	return v, nil
}

// GetByID returns the registered vehicle with the given id.
func (m *Manager) GetByID(id ID) (*Vehicle, bool) {
	v, ok := m.vehicles[id]
	return v, ok
}

// Count returns the number of registered vehicles.
func (m *Manager) Count() int {
	return len(m.vehicles)
}

// Vehicles returns the registered vehicles ordered by id.
func (m *Manager) Vehicles() []*Vehicle {
	out := make([]*Vehicle, 0, len(m.vehicles))
	for _, id := range slices.Sorted(maps.Keys(m.vehicles)) {
		out = append(out, m.vehicles[id])
	}
	return out
}

// AddObserver registers o. Adding an observer that is already registered is a no-op.
func (m *Manager) AddObserver(o Observer) error {
	if !isComparable(o) {
		return ErrInvalidObserver
	}
	m.observers.add(o)
	return nil
}

// RemoveObserver unregisters o. Unknown observers are ignored.
func (m *Manager) RemoveObserver(o Observer) {
	if !isComparable(o) {
		return
	}
	m.observers.remove(o)
}

func isComparable(o Observer) bool {
	return o != nil && reflect.TypeOf(o).Comparable()
}

// ReportTrailerUpdate applies a host report that vehicleID now tows trailerID, or nothing
// when trailerID is InvalidID. Reports naming unknown vehicles are dropped.
func (m *Manager) ReportTrailerUpdate(vehicleID, trailerID ID) error {
	v, ok := m.vehicles[vehicleID]
	if !ok {
		m.logger.Debug("trailer update for unknown vehicle", "vehicleId", vehicleID)
		return nil
	}

	var trailer *Vehicle
	if trailerID != InvalidID {
		if trailer, ok = m.vehicles[trailerID]; !ok {
			m.logger.Debug("trailer update for unknown trailer", "vehicleId", vehicleID, "trailerId", trailerID)
			return nil
		}
	}

	return v.SetTrailer(trailer)
}

// Dispose disposes every registered vehicle in id order, then drops all observers.
// The manager cannot create vehicles afterwards.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true

	vehicles := m.Vehicles()
	for _, v := range vehicles {
		v.Dispose()
	}

	clear(m.vehicles)
	m.observers.clear()
	m.logger.Info("vehicle manager disposed", "vehicles", len(vehicles))
}

// couple makes trailer the trailer of v (nil detaches). All state is updated before any
// observer runs. Detach events come first: v's previous trailer, then the trailer's
// previous tower.
func (m *Manager) couple(v, trailer *Vehicle) {
	previous := v.trailer
	if previous == trailer {
		return
	}

	type coupling struct{ vehicle, trailer *Vehicle }
	var detached []coupling

	if previous != nil {
		previous.parentID = InvalidID
		detached = append(detached, coupling{v, previous})
	}

	if trailer != nil {
		if owner := trailer.Parent(); owner != nil {
			owner.trailer = nil
			detached = append(detached, coupling{owner, trailer})
		}
		trailer.parentID = v.id
	}
	v.trailer = trailer

	for _, c := range detached {
		m.logger.Debug("trailer detached", "vehicle", c.vehicle, "trailer", c.trailer)
		m.notify("trailer_detached", func(o Observer) { o.OnTrailerDetached(c.vehicle, c.trailer) })
	}
	if trailer != nil {
		m.logger.Debug("trailer attached", "vehicle", v, "trailer", trailer)
		m.notify("trailer_attached", func(o Observer) { o.OnTrailerAttached(v, trailer) })
	}
}

// release removes a disposed vehicle from the registry and destroys it on the host.
func (m *Manager) release(v *Vehicle) {
	if m.vehicles[v.id] == v {
		delete(m.vehicles, v.id)
	}
	m.host.DestroyVehicle(v.id)

	m.metrics.disposed.Add(context.Background(), 1)
	m.metrics.active.Add(context.Background(), -1)
	m.logger.Debug("vehicle disposed", "vehicle", v)

	m.notifyLifecycle("disposed", func(o LifecycleObserver) { o.OnVehicleDisposed(v) })
}

func (m *Manager) notifySpawn(v *Vehicle) {
	m.notify("spawn", func(o Observer) { o.OnVehicleSpawn(v) })
}

func (m *Manager) notifyDeath(v *Vehicle) {
	m.notify("death", func(o Observer) { o.OnVehicleDeath(v) })
}

// notify delivers to a snapshot of the observer set; observers added or removed by a
// handler take effect from the next event.
func (m *Manager) notify(event string, fn func(Observer)) {
	observers := m.observers.snapshot()
	for _, o := range observers {
		fn(o)
	}
	m.metrics.delivered(event, len(observers))
}

func (m *Manager) notifyLifecycle(event string, fn func(LifecycleObserver)) {
	n := 0
	for _, o := range m.observers.snapshot() {
		if lo, ok := o.(LifecycleObserver); ok {
			fn(lo)
			n++
		}
	}
	m.metrics.delivered(event, n)
}

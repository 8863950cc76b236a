// Package host provides implementations of vehicle.Host.
package host

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/LVPlayground/gamemode/internal/vehicle"
)

// ErrLimitReached is returned when the host has no vehicle ids left.
var ErrLimitReached = errors.New("vehicle limit reached")

// maxIDs is the number of ids below vehicle.InvalidID, not counting 0.
const maxIDs = int(vehicle.InvalidID) - 1

// Memory is an in-process host runtime. It hands out the lowest free id starting at 1.
// It is safe for concurrent use.
type Memory struct {
	mu          sync.Mutex
	maxVehicles int
	vehicles    map[vehicle.ID]vehicle.Descriptor
	destroyed   []vehicle.ID
}

// NewMemory creates a host that holds at most maxVehicles vehicles.
func NewMemory(maxVehicles int) *Memory {
	if maxVehicles <= 0 || maxVehicles > maxIDs {
		maxVehicles = maxIDs
	}
	return &Memory{
		maxVehicles: maxVehicles,
		vehicles:    make(map[vehicle.ID]vehicle.Descriptor),
	}
}

func (h *Memory) CreateVehicle(d vehicle.Descriptor) (vehicle.ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.allocate(d)
}

// Preload creates a vehicle directly on the host, bypassing the gamemode.
// The vehicle manager never sees such vehicles.
func (h *Memory) Preload(d vehicle.Descriptor) (vehicle.ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.allocate(d)
}

func (h *Memory) allocate(d vehicle.Descriptor) (vehicle.ID, error) {
	if len(h.vehicles) >= h.maxVehicles {
		return vehicle.InvalidID, fmt.Errorf("%w: %d vehicles", ErrLimitReached, h.maxVehicles)
	}
	for id := vehicle.ID(1); id != vehicle.InvalidID; id++ {
		if _, taken := h.vehicles[id]; !taken {
			h.vehicles[id] = d
			return id, nil
		}
	}
	return vehicle.InvalidID, ErrLimitReached
}

// DestroyVehicle removes the vehicle. Unknown ids are recorded but otherwise ignored.
func (h *Memory) DestroyVehicle(id vehicle.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.vehicles, id)
	h.destroyed = append(h.destroyed, id)
}

// Exists reports whether the host currently has a vehicle with the id.
func (h *Memory) Exists(id vehicle.ID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, ok := h.vehicles[id]
	return ok
}

// Count returns the number of vehicles on the host, including preloaded ones.
func (h *Memory) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.vehicles)
}

// Destroyed returns every id passed to DestroyVehicle, in call order.
func (h *Memory) Destroyed() []vehicle.ID {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.destroyed)
}

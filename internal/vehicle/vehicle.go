package vehicle

import (
	"fmt"
	"log/slog"

	"github.com/LVPlayground/gamemode/pkg/core"
)

// Vehicle is a gamemode-side handle to a host vehicle. Vehicles are created by the Manager
// and must only be touched from the thread that drives it.
type Vehicle struct {
	manager *Manager
	id      ID
	modelID int

	position       core.Position3D
	rotation       float64
	primaryColor   int
	secondaryColor int
	siren          bool
	paintjob       int
	interiorID     int
	virtualWorld   int

	// trailer is owned by this vehicle. parentID refers back to the tower and is resolved
	// through the manager's registry.
	trailer  *Vehicle
	parentID ID

	connected bool
	disposing bool
}

func newVehicle(m *Manager, id ID, d Descriptor) *Vehicle {
	return &Vehicle{
		manager:        m,
		id:             id,
		modelID:        d.ModelID,
		position:       *d.Position,
		rotation:       d.Rotation,
		primaryColor:   *d.PrimaryColor,
		secondaryColor: *d.SecondaryColor,
		siren:          d.Siren,
		paintjob:       *d.Paintjob,
		interiorID:     d.InteriorID,
		virtualWorld:   d.VirtualWorld,
		parentID:       InvalidID,
		connected:      true,
	}
}

func (v *Vehicle) ID() ID                    { return v.id }
func (v *Vehicle) ModelID() int              { return v.modelID }
func (v *Vehicle) Position() core.Position3D { return v.position }
func (v *Vehicle) Rotation() float64         { return v.rotation }
func (v *Vehicle) PrimaryColor() int         { return v.primaryColor }
func (v *Vehicle) SecondaryColor() int       { return v.secondaryColor }
func (v *Vehicle) Siren() bool               { return v.siren }
func (v *Vehicle) Paintjob() int             { return v.paintjob }
func (v *Vehicle) InteriorID() int           { return v.interiorID }
func (v *Vehicle) VirtualWorld() int         { return v.virtualWorld }

// IsConnected reports whether the vehicle is still live. It turns false once Dispose ran.
func (v *Vehicle) IsConnected() bool { return v.connected }

// Trailer returns the vehicle being towed, or nil.
func (v *Vehicle) Trailer() *Vehicle { return v.trailer }

// Parent returns the vehicle towing this one, or nil.
func (v *Vehicle) Parent() *Vehicle {
	if v.parentID == InvalidID {
		return nil
	}
	return v.manager.vehicles[v.parentID]
}

func (v *Vehicle) checkConnected() error {
	if !v.connected {
		return fmt.Errorf("%w: vehicle %d", ErrDisposedEntity, v.id)
	}
	return nil
}

func (v *Vehicle) SetPosition(p core.Position3D) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.position = p
	return nil
}

func (v *Vehicle) SetRotation(rotation float64) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.rotation = rotation
	return nil
}

func (v *Vehicle) SetPrimaryColor(color int) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.primaryColor = color
	return nil
}

func (v *Vehicle) SetSecondaryColor(color int) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.secondaryColor = color
	return nil
}

func (v *Vehicle) SetSiren(siren bool) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.siren = siren
	return nil
}

func (v *Vehicle) SetPaintjob(paintjob int) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.paintjob = paintjob
	return nil
}

// SetInteriorID updates the interior and carries it over to the current trailer.
// The copy goes one hop only and fires no events.
func (v *Vehicle) SetInteriorID(interiorID int) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.interiorID = interiorID
	if v.trailer != nil {
		v.trailer.interiorID = interiorID
	}
	return nil
}

// SetVirtualWorld updates the virtual world and carries it over to the current trailer.
func (v *Vehicle) SetVirtualWorld(world int) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.virtualWorld = world
	if v.trailer != nil {
		v.trailer.virtualWorld = world
	}
	return nil
}

// SetTrailer couples trailer to v, or detaches the current trailer when trailer is nil.
// A trailer already towed by another vehicle is taken over from it. Vehicles that are
// being disposed cannot gain new couplings.
func (v *Vehicle) SetTrailer(trailer *Vehicle) error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	if v.disposing {
		return fmt.Errorf("%w: vehicle %d is being disposed", ErrDisposedEntity, v.id)
	}
	if trailer != nil {
		switch {
		case trailer == v:
			return fmt.Errorf("%w: vehicle %d cannot tow itself", ErrInvalidTrailer, v.id)
		case trailer.manager != v.manager:
			return fmt.Errorf("%w: vehicle %d belongs to another manager", ErrInvalidTrailer, trailer.id)
		case !trailer.connected || trailer.disposing:
			return fmt.Errorf("%w: trailer %d has been disposed", ErrInvalidTrailer, trailer.id)
		}
		for p := v.Parent(); p != nil; p = p.Parent() {
			if p == trailer {
				return fmt.Errorf("%w: vehicle %d is towed by %d", ErrInvalidTrailer, v.id, trailer.id)
			}
		}
	}

	v.manager.couple(v, trailer)
	return nil
}

// Spawn signals that the host (re)spawned the vehicle.
func (v *Vehicle) Spawn() error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.manager.notifySpawn(v)
	return nil
}

// Death signals that the host destroyed the vehicle in play.
func (v *Vehicle) Death() error {
	if err := v.checkConnected(); err != nil {
		return err
	}
	v.manager.notifyDeath(v)
	return nil
}

// Dispose releases the vehicle: couplings on both sides are broken, the vehicle leaves the
// registry and the host is asked to destroy it. Calling Dispose again does nothing.
func (v *Vehicle) Dispose() {
	if !v.connected || v.disposing {
		return
	}
	v.disposing = true

	if v.trailer != nil {
		v.manager.couple(v, nil)
	}
	if parent := v.Parent(); parent != nil {
		v.manager.couple(parent, nil)
	}

	v.connected = false
	v.manager.release(v)
}

// Snapshot copies the current state into a core.Vehicle.
func (v *Vehicle) Snapshot() core.Vehicle {
	s := core.Vehicle{
		ID:             uint16(v.id),
		ModelID:        v.modelID,
		Position:       v.position,
		Rotation:       v.rotation,
		PrimaryColor:   v.primaryColor,
		SecondaryColor: v.secondaryColor,
		Siren:          v.siren,
		Paintjob:       v.paintjob,
		InteriorID:     v.interiorID,
		VirtualWorld:   v.virtualWorld,
	}
	if v.trailer != nil {
		id := uint16(v.trailer.id)
		s.TrailerID = &id
	}
	if v.parentID != InvalidID {
		id := uint16(v.parentID)
		s.ParentID = &id
	}
	return s
}

func (v *Vehicle) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("id", int(v.id)),
		slog.Int("model", v.modelID),
	)
}

package vehicle

import "slices"

// Observer receives vehicle lifecycle and coupling events. Embed NopObserver to implement
// only the handlers you need.
type Observer interface {
	OnVehicleSpawn(vehicle *Vehicle)
	OnVehicleDeath(vehicle *Vehicle)
	OnTrailerAttached(vehicle, trailer *Vehicle)
	OnTrailerDetached(vehicle, trailer *Vehicle)
}

// LifecycleObserver is an optional capability for observers that also want to hear about
// vehicles entering and leaving the registry.
type LifecycleObserver interface {
	OnVehicleCreated(vehicle *Vehicle)
	OnVehicleDisposed(vehicle *Vehicle)
}

// NopObserver implements Observer with no-op handlers.
type NopObserver struct{}

func (NopObserver) OnVehicleSpawn(*Vehicle)              {}
func (NopObserver) OnVehicleDeath(*Vehicle)              {}
func (NopObserver) OnTrailerAttached(*Vehicle, *Vehicle) {}
func (NopObserver) OnTrailerDetached(*Vehicle, *Vehicle) {}

// observerSet keeps observers in registration order, each at most once.
type observerSet struct {
	ordered []Observer
	index   map[Observer]int
}

func newObserverSet() observerSet {
	return observerSet{index: make(map[Observer]int)}
}

func (s *observerSet) add(o Observer) bool {
	if _, ok := s.index[o]; ok {
		return false
	}
	s.index[o] = len(s.ordered)
	s.ordered = append(s.ordered, o)
	return true
}

func (s *observerSet) remove(o Observer) bool {
	i, ok := s.index[o]
	if !ok {
		return false
	}
	s.ordered = slices.Delete(s.ordered, i, i+1)
	delete(s.index, o)
	for j := i; j < len(s.ordered); j++ {
		s.index[s.ordered[j]] = j
	}
	return true
}

func (s *observerSet) len() int {
	return len(s.ordered)
}

// snapshot is what a single dispatch iterates; later changes to the set do not affect it.
func (s *observerSet) snapshot() []Observer {
	return slices.Clone(s.ordered)
}

func (s *observerSet) clear() {
	s.ordered = nil
	clear(s.index)
}

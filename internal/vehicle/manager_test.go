package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RequiresHost(t *testing.T) {
	_, err := NewManager(Dependencies{})
	assert.Error(t, err)
}

func TestCreateVehicle_Count(t *testing.T) {
	m, _ := newTestManager(t)

	mustCreate(t, m, 411)
	_, err := m.CreateVehicle(Descriptor{ModelID: 520, Position: at(1, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Count())
}

func TestCreateVehicle_Fields(t *testing.T) {
	m, host := newTestManager(t)

	v, err := m.CreateVehicle(Descriptor{
		ModelID:        411,
		Position:       at(42, 43, 44),
		Rotation:       45,
		PrimaryColor:   ptr(50),
		SecondaryColor: ptr(100),
		Siren:          true,
		Paintjob:       ptr(2),
		InteriorID:     5,
		VirtualWorld:   6,
	})
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, ID(1), v.ID())
	assert.Equal(t, 411, v.ModelID())
	assert.Equal(t, *at(42, 43, 44), v.Position())
	assert.Equal(t, 45.0, v.Rotation())
	assert.Equal(t, 50, v.PrimaryColor())
	assert.Equal(t, 100, v.SecondaryColor())
	assert.True(t, v.Siren())
	assert.Equal(t, 2, v.Paintjob())
	assert.Equal(t, 5, v.InteriorID())
	assert.Equal(t, 6, v.VirtualWorld())
	assert.True(t, v.IsConnected())
	assert.Nil(t, v.Trailer())
	assert.Nil(t, v.Parent())

	require.Len(t, host.created, 1)
	assert.Equal(t, 411, host.created[0].ModelID)
}

func TestCreateVehicle_Defaults(t *testing.T) {
	m, host := newTestManager(t)

	v := mustCreate(t, m, 411)

	assert.Equal(t, 0.0, v.Rotation())
	assert.Equal(t, ColorRandom, v.PrimaryColor())
	assert.Equal(t, ColorRandom, v.SecondaryColor())
	assert.False(t, v.Siren())
	assert.Equal(t, PaintjobNone, v.Paintjob())
	assert.Equal(t, 0, v.InteriorID())
	assert.Equal(t, 0, v.VirtualWorld())

	// the host sees the defaulted descriptor
	require.Len(t, host.created, 1)
	require.NotNil(t, host.created[0].PrimaryColor)
	assert.Equal(t, ColorRandom, *host.created[0].PrimaryColor)
	assert.Equal(t, PaintjobNone, *host.created[0].Paintjob)
}

func TestCreateVehicle_InvalidDescriptor(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
	}{
		{"missing model", Descriptor{Position: at(0, 0, 0)}},
		{"missing position", Descriptor{ModelID: 411}},
		{"unknown model", Descriptor{ModelID: 1000, Position: at(0, 0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newTestManager(t)

			v, err := m.CreateVehicle(tt.d)

			assert.ErrorIs(t, err, ErrInvalidDescriptor)
			assert.Nil(t, v)
			assert.Empty(t, host.created)
			assert.Equal(t, 0, m.Count())
		})
	}
}

func TestCreateVehicle_HostFailure(t *testing.T) {
	invalid := InvalidID
	taken := ID(1)

	tests := []struct {
		name     string
		err      error
		returnID *ID
	}{
		{"host error", errHostFull, nil},
		{"invalid id", nil, &invalid},
		{"id still registered", nil, &taken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newTestManager(t)
			existing := mustCreate(t, m, 411)

			host.err = tt.err
			host.returnID = tt.returnID
			v, err := m.CreateVehicle(Descriptor{ModelID: 411, Position: at(0, 0, 0)})

			assert.ErrorIs(t, err, ErrHostCreationFailure)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			assert.Nil(t, v)
			assert.Equal(t, 1, m.Count())

			found, ok := m.GetByID(existing.ID())
			assert.True(t, ok)
			assert.Same(t, existing, found)
			assert.Empty(t, host.destroyed)
		})
	}
}

func TestGetByID(t *testing.T) {
	m, _ := newTestManager(t)

	v := mustCreate(t, m, 411)

	found, ok := m.GetByID(v.ID())
	assert.True(t, ok)
	assert.Same(t, v, found)

	// vehicles the gamemode did not create are unknown
	found, ok = m.GetByID(51)
	assert.False(t, ok)
	assert.Nil(t, found)
}

func TestVehicles_SortedByID(t *testing.T) {
	m, host := newTestManager(t)

	host.next = 9
	a := mustCreate(t, m, 411)
	host.next = 2
	b := mustCreate(t, m, 411)
	host.next = 5
	c := mustCreate(t, m, 411)

	assert.Equal(t, []*Vehicle{b, c, a}, m.Vehicles())
}

func TestAddObserver_NoDoubleRegistration(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)
	obs := &recorder{}

	require.NoError(t, m.AddObserver(obs))
	require.NoError(t, m.AddObserver(obs))

	require.NoError(t, v.Spawn())

	assert.Equal(t, []string{"spawn 1"}, obs.events)
}

type valueObserver struct {
	NopObserver
	seen []string
}

func TestAddObserver_Invalid(t *testing.T) {
	m, _ := newTestManager(t)

	assert.ErrorIs(t, m.AddObserver(nil), ErrInvalidObserver)
	assert.ErrorIs(t, m.AddObserver(valueObserver{}), ErrInvalidObserver)

	// removing them must not panic either
	m.RemoveObserver(nil)
	m.RemoveObserver(valueObserver{})
}

func TestRemoveObserver(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)
	obs := &recorder{}

	require.NoError(t, m.AddObserver(obs))
	require.NoError(t, v.Spawn())
	assert.Len(t, obs.events, 1)

	m.RemoveObserver(obs)
	require.NoError(t, v.Spawn())
	assert.Len(t, obs.events, 1)

	// unknown observers are ignored
	m.RemoveObserver(&recorder{})
}

func TestObservers_ForwardEvents(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)
	obs := &recorder{}
	require.NoError(t, m.AddObserver(obs))

	require.NoError(t, v.Spawn())
	require.NoError(t, v.Death())

	assert.Equal(t, []string{"spawn 1", "death 1"}, obs.events)
}

type namedObserver struct {
	NopObserver
	name string
	log  *[]string
}

func (o *namedObserver) OnVehicleSpawn(*Vehicle) {
	*o.log = append(*o.log, o.name)
}

func TestObservers_RegistrationOrder(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)

	var log []string
	first := &namedObserver{name: "first", log: &log}
	second := &namedObserver{name: "second", log: &log}
	third := &namedObserver{name: "third", log: &log}
	for _, o := range []Observer{first, second, third} {
		require.NoError(t, m.AddObserver(o))
	}

	require.NoError(t, v.Spawn())
	m.RemoveObserver(second)
	require.NoError(t, m.AddObserver(second))
	require.NoError(t, v.Spawn())

	assert.Equal(t, []string{"first", "second", "third", "first", "third", "second"}, log)
}

type hookObserver struct {
	NopObserver
	onSpawn func(*Vehicle)
}

func (o *hookObserver) OnVehicleSpawn(v *Vehicle) {
	o.onSpawn(v)
}

func TestObservers_ChangesDuringDispatch(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)

	late := &recorder{}
	victim := &recorder{}
	remover := &hookObserver{onSpawn: func(*Vehicle) {
		m.RemoveObserver(victim)
		require.NoError(t, m.AddObserver(late))
	}}

	require.NoError(t, m.AddObserver(remover))
	require.NoError(t, m.AddObserver(victim))

	require.NoError(t, v.Spawn())
	assert.Equal(t, []string{"spawn 1"}, victim.events, "removed observer still gets the in-flight event")
	assert.Empty(t, late.events, "added observer waits for the next event")

	require.NoError(t, v.Spawn())
	assert.Equal(t, []string{"spawn 1"}, victim.events)
	assert.Equal(t, []string{"spawn 1"}, late.events)
}

func TestLifecycleObserver(t *testing.T) {
	m, _ := newTestManager(t)
	obs := &lifecycleRecorder{}
	require.NoError(t, m.AddObserver(obs))

	v := mustCreate(t, m, 411)
	require.NoError(t, v.Spawn())
	v.Dispose()

	assert.Equal(t, []string{"created 1", "spawn 1", "disposed 1"}, obs.events)
}

func TestReportTrailerUpdate(t *testing.T) {
	m, _ := newTestManager(t)

	v := mustCreate(t, m, 411)
	trailer1 := mustCreate(t, m, 611)
	trailer2 := mustCreate(t, m, 611)

	assert.Nil(t, v.Trailer())
	assert.Nil(t, trailer1.Parent())
	assert.Nil(t, trailer2.Parent())

	require.NoError(t, m.ReportTrailerUpdate(v.ID(), trailer1.ID()))
	assert.Same(t, trailer1, v.Trailer())
	assert.Same(t, v, trailer1.Parent())
	assert.Nil(t, trailer2.Parent())

	require.NoError(t, m.ReportTrailerUpdate(v.ID(), trailer2.ID()))
	assert.Same(t, trailer2, v.Trailer())
	assert.Nil(t, trailer1.Parent())
	assert.Same(t, v, trailer2.Parent())

	require.NoError(t, m.ReportTrailerUpdate(v.ID(), InvalidID))
	assert.Nil(t, v.Trailer())
	assert.Nil(t, trailer1.Parent())
	assert.Nil(t, trailer2.Parent())
}

func TestReportTrailerUpdate_MatchesSetTrailer(t *testing.T) {
	type step struct{ vehicle, trailer int }
	const none = -1

	// Vehicles 0 and 1 are towers, 2 and 3 are trailers.
	steps := []step{
		{0, 2},
		{0, 3},
		{1, 3},
		{1, none},
	}

	tests := []struct {
		name  string
		apply func(m *Manager, vehicles []*Vehicle, s step) error
	}{
		{"set trailer", func(m *Manager, vehicles []*Vehicle, s step) error {
			var trailer *Vehicle
			if s.trailer != none {
				trailer = vehicles[s.trailer]
			}
			return vehicles[s.vehicle].SetTrailer(trailer)
		}},
		{"report trailer update", func(m *Manager, vehicles []*Vehicle, s step) error {
			trailerID := InvalidID
			if s.trailer != none {
				trailerID = vehicles[s.trailer].ID()
			}
			return m.ReportTrailerUpdate(vehicles[s.vehicle].ID(), trailerID)
		}},
	}

	expected := []string{
		"attach 1 3",
		"detach 1 3", "attach 1 4",
		"detach 1 4", "attach 2 4",
		"detach 2 4",
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			vehicles := []*Vehicle{
				mustCreate(t, m, 525),
				mustCreate(t, m, 525),
				mustCreate(t, m, 611),
				mustCreate(t, m, 611),
			}
			obs := &recorder{}
			require.NoError(t, m.AddObserver(obs))

			for _, s := range steps {
				require.NoError(t, tt.apply(m, vehicles, s))
			}

			assert.Equal(t, expected, obs.events)
			for _, v := range vehicles {
				assert.Nil(t, v.Trailer())
				assert.Nil(t, v.Parent())
			}
		})
	}
}

func TestReportTrailerUpdate_UnknownVehicles(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)
	trailer := mustCreate(t, m, 611)
	require.NoError(t, v.SetTrailer(trailer))

	obs := &recorder{}
	require.NoError(t, m.AddObserver(obs))

	assert.NoError(t, m.ReportTrailerUpdate(900, trailer.ID()))
	assert.NoError(t, m.ReportTrailerUpdate(v.ID(), 900))

	assert.Same(t, trailer, v.Trailer())
	assert.Empty(t, obs.events)
}

func TestReportTrailerUpdate_Self(t *testing.T) {
	m, _ := newTestManager(t)
	v := mustCreate(t, m, 411)

	err := m.ReportTrailerUpdate(v.ID(), v.ID())

	assert.ErrorIs(t, err, ErrInvalidTrailer)
	assert.Nil(t, v.Trailer())
}

func TestManagerDispose(t *testing.T) {
	m, host := newTestManager(t)
	obs := &lifecycleRecorder{}
	require.NoError(t, m.AddObserver(obs))

	a := mustCreate(t, m, 411)
	b := mustCreate(t, m, 611)
	c := mustCreate(t, m, 520)
	require.NoError(t, a.SetTrailer(b))
	obs.events = nil

	m.Dispose()

	for _, v := range []*Vehicle{a, b, c} {
		assert.False(t, v.IsConnected())
	}
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.Vehicles())
	assert.Equal(t, []ID{1, 2, 3}, host.destroyed)
	assert.Equal(t, []string{"detach 1 2", "disposed 1", "disposed 2", "disposed 3"}, obs.events)
	assert.Equal(t, 0, m.observers.len())

	// second call does nothing
	m.Dispose()
	assert.Equal(t, []ID{1, 2, 3}, host.destroyed)

	_, err := m.CreateVehicle(Descriptor{ModelID: 411, Position: at(0, 0, 0)})
	assert.ErrorIs(t, err, ErrManagerDisposed)
}

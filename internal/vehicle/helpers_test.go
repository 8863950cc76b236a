package vehicle

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/LVPlayground/gamemode/pkg/core"
	"github.com/stretchr/testify/require"
)

// fakeHost hands out sequential ids starting at 1.
type fakeHost struct {
	next      ID
	err       error
	returnID  *ID
	created   []Descriptor
	destroyed []ID
}

func (h *fakeHost) CreateVehicle(d Descriptor) (ID, error) {
	h.created = append(h.created, d)
	if h.err != nil {
		return InvalidID, h.err
	}
	if h.returnID != nil {
		return *h.returnID, nil
	}
	h.next++
	return h.next, nil
}

func (h *fakeHost) DestroyVehicle(id ID) {
	h.destroyed = append(h.destroyed, id)
}

// recorder logs every observer call as a readable string.
type recorder struct {
	events []string
}

func (r *recorder) OnVehicleSpawn(v *Vehicle) {
	r.events = append(r.events, fmt.Sprintf("spawn %d", v.ID()))
}

func (r *recorder) OnVehicleDeath(v *Vehicle) {
	r.events = append(r.events, fmt.Sprintf("death %d", v.ID()))
}

func (r *recorder) OnTrailerAttached(v, trailer *Vehicle) {
	r.events = append(r.events, fmt.Sprintf("attach %d %d", v.ID(), trailer.ID()))
}

func (r *recorder) OnTrailerDetached(v, trailer *Vehicle) {
	r.events = append(r.events, fmt.Sprintf("detach %d %d", v.ID(), trailer.ID()))
}

// lifecycleRecorder additionally hears about creation and disposal.
type lifecycleRecorder struct {
	recorder
}

func (r *lifecycleRecorder) OnVehicleCreated(v *Vehicle) {
	r.events = append(r.events, fmt.Sprintf("created %d", v.ID()))
}

func (r *lifecycleRecorder) OnVehicleDisposed(v *Vehicle) {
	r.events = append(r.events, fmt.Sprintf("disposed %d", v.ID()))
}

var errHostFull = errors.New("host is full")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T) (*Manager, *fakeHost) {
	t.Helper()
	host := &fakeHost{}
	m, err := NewManager(Dependencies{Host: host, Logger: testLogger()})
	require.NoError(t, err)
	return m, host
}

func at(x, y, z float64) *core.Position3D {
	return &core.Position3D{X: x, Y: y, Z: z}
}

func ptr(n int) *int {
	return &n
}

func mustCreate(t *testing.T, m *Manager, modelID int) *Vehicle {
	t.Helper()
	v, err := m.CreateVehicle(Descriptor{ModelID: modelID, Position: at(0, 0, 0)})
	require.NoError(t, err)
	return v
}

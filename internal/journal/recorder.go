package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LVPlayground/gamemode/internal/queue"
	"github.com/LVPlayground/gamemode/internal/vehicle"
	"github.com/LVPlayground/gamemode/pkg/core"
)

// DefaultQueueSize bounds the records waiting for the writer when Options.QueueSize is zero.
const DefaultQueueSize = 50000

// ErrRecorderClosed is returned by Close after the first call.
var ErrRecorderClosed = errors.New("journal recorder closed")

// record is either a vehicle snapshot or an event.
type record struct {
	vehicle *core.Vehicle
	event   *core.VehicleEvent
}

// Options configures a Recorder
type Options struct {
	Backend Backend
	Session core.Session

	// FlushInterval batches writes; zero flushes as soon as records arrive.
	FlushInterval time.Duration
	QueueSize     int
	Logger        *slog.Logger

	// Clock stamps records; defaults to time.Now.
	Clock func() time.Time
}

// Recorder is a vehicle observer that journals everything it hears.
// The observer methods run on the game thread and never block on the backend.
type Recorder struct {
	vehicle.NopObserver

	backend Backend
	session core.Session
	records *queue.Queue[record]
	logger  *slog.Logger
	clock   func() time.Time
	metrics *metrics

	flushInterval time.Duration
	flushMu       sync.Mutex
	stop          chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
}

var (
	_ vehicle.Observer          = (*Recorder)(nil)
	_ vehicle.LifecycleObserver = (*Recorder)(nil)
)

// NewRecorder initializes the backend, starts the session and the background writer.
func NewRecorder(opts Options) (*Recorder, error) {
	if opts.Backend == nil {
		return nil, errors.New("journal backend is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	if err := opts.Backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize journal backend: %w", err)
	}
	session := opts.Session
	if err := opts.Backend.StartSession(&session); err != nil {
		_ = opts.Backend.Close()
		return nil, fmt.Errorf("failed to start journal session: %w", err)
	}

	r := &Recorder{
		backend:       opts.Backend,
		session:       session,
		records:       queue.New[record](opts.QueueSize),
		logger:        opts.Logger,
		clock:         opts.Clock,
		metrics:       m,
		flushInterval: opts.FlushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go r.run()

	r.logger.Info("Journal session started", "sessionId", session.ID, "backend", fmt.Sprintf("%T", opts.Backend))
	return r, nil
}

// Session returns the session this recorder writes to.
func (r *Recorder) Session() core.Session {
	return r.session
}

// QueueLen returns the number of records waiting for the writer.
func (r *Recorder) QueueLen() int {
	return r.records.Len()
}

// Dropped returns the number of records lost to a full queue.
func (r *Recorder) Dropped() uint64 {
	return r.records.Dropped()
}

func (r *Recorder) OnVehicleCreated(v *vehicle.Vehicle) {
	snapshot := v.Snapshot()
	snapshot.SessionID = r.session.ID
	snapshot.Time = r.clock()
	r.push(record{vehicle: &snapshot}, record{event: r.event(core.EventCreated, v, nil)})
}

func (r *Recorder) OnVehicleDisposed(v *vehicle.Vehicle) {
	r.push(record{event: r.event(core.EventDisposed, v, nil)})
}

func (r *Recorder) OnVehicleSpawn(v *vehicle.Vehicle) {
	r.push(record{event: r.event(core.EventSpawn, v, nil)})
}

func (r *Recorder) OnVehicleDeath(v *vehicle.Vehicle) {
	r.push(record{event: r.event(core.EventDeath, v, nil)})
}

func (r *Recorder) OnTrailerAttached(v, trailer *vehicle.Vehicle) {
	r.push(record{event: r.event(core.EventAttached, v, trailer)})
}

func (r *Recorder) OnTrailerDetached(v, trailer *vehicle.Vehicle) {
	r.push(record{event: r.event(core.EventDetached, v, trailer)})
}

func (r *Recorder) event(t core.EventType, v, trailer *vehicle.Vehicle) *core.VehicleEvent {
	e := &core.VehicleEvent{
		SessionID: r.session.ID,
		Time:      r.clock(),
		Type:      t,
		VehicleID: uint16(v.ID()),
		ModelID:   v.ModelID(),
		Position:  v.Position(),
	}
	if trailer != nil {
		id := uint16(trailer.ID())
		e.TrailerID = &id
	}
	return e
}

func (r *Recorder) push(records ...record) {
	if rejected := r.records.Push(records...); rejected > 0 {
		r.metrics.dropped.Add(context.Background(), int64(rejected))
		r.logger.Warn("Journal queue full, dropping records", "dropped", rejected)
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	var tick <-chan time.Time
	var ready <-chan struct{}
	if r.flushInterval > 0 {
		ticker := time.NewTicker(r.flushInterval)
		defer ticker.Stop()
		tick = ticker.C
	} else {
		ready = r.records.Ready()
	}

	for {
		select {
		case <-r.stop:
			r.Flush()
			return
		case <-tick:
			r.Flush()
		case <-ready:
			r.Flush()
		}
	}
}

// Flush writes every queued record to the backend. Backend errors are logged per record and
// do not stop the batch.
func (r *Recorder) Flush() {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	batch := r.records.Drain()
	if len(batch) == 0 {
		return
	}

	var written, failed int64
	for _, rec := range batch {
		var err error
		if rec.vehicle != nil {
			err = r.backend.RecordVehicle(rec.vehicle)
		} else {
			err = r.backend.RecordEvent(rec.event)
		}
		if err != nil {
			failed++
			r.logger.Error("Failed to write journal record", "error", err)
			continue
		}
		written++
	}

	ctx := context.Background()
	r.metrics.written.Add(ctx, written)
	if failed > 0 {
		r.metrics.failed.Add(ctx, failed)
	}
	r.logger.Debug("Flushed journal", "written", written, "failed", failed)
}

// Close stops the writer, flushes what is left, ends the session and closes the backend.
// Detach the recorder from the vehicle manager before calling Close.
func (r *Recorder) Close() error {
	err := ErrRecorderClosed
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.done

		var errs []error
		if e := r.backend.EndSession(r.clock()); e != nil {
			errs = append(errs, fmt.Errorf("failed to end journal session: %w", e))
		}
		if e := r.backend.Close(); e != nil {
			errs = append(errs, fmt.Errorf("failed to close journal backend: %w", e))
		}
		err = errors.Join(errs...)

		attrs := []any{"sessionId", r.session.ID, "dropped", r.records.Dropped()}
		if exp, ok := r.backend.(Exporter); ok && exp.ExportedFilePath() != "" {
			attrs = append(attrs, "file", exp.ExportedFilePath())
		}
		r.logger.Info("Journal session ended", attrs...)
	})
	return err
}

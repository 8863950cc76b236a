package dispatcher

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultQueueSize is the capacity of the shared event queue when New is given zero.
const DefaultQueueSize = 10000

// ErrClosed is returned for queued events dispatched after Close.
var ErrClosed = errors.New("dispatcher closed")

// Event represents an incoming command from the game server.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	queued   bool
	blocking bool
	logged   bool
}

// Queued makes the handler async: events go to the shared queue and run in arrival order.
func Queued() Option {
	return func(c *config) {
		c.queued = true
	}
}

// Blocking makes a queued handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

type queuedEvent struct {
	event   Event
	handler HandlerFunc
}

// Dispatcher routes events to registered handlers. Handlers never run concurrently with
// each other, so they may share state without locking. A handler must not call Dispatch
// for a synchronous command.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	// exec is held while any handler runs
	exec sync.Mutex

	metrics *metrics

	mu     sync.RWMutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

// New creates a new Dispatcher with the given logger and starts its queue worker.
func New(logger Logger, queueSize int) (*Dispatcher, error) {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		queue:    make(chan queuedEvent, queueSize),
		done:     make(chan struct{}),
	}

	m, err := newMetrics(d.QueueLen)
	if err != nil {
		return nil, err
	}
	d.metrics = m

	go d.drain()

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
// Register all handlers before the first Dispatch.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = d.withLogging(command, handler)
	}

	if cfg.queued {
		handler = d.withQueue(command, cfg.blocking, handler)
	} else {
		handler = d.withLock(command, handler)
	}

	d.handlers[command] = handler
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// Run executes fn on the dispatcher thread, in between handlers.
func (d *Dispatcher) Run(fn func()) {
	d.exec.Lock()
	defer d.exec.Unlock()
	fn()
}

// QueueLen returns the number of queued events not yet handled.
func (d *Dispatcher) QueueLen() int {
	return len(d.queue)
}

// Close stops accepting queued events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) drain() {
	defer close(d.done)
	for qe := range d.queue {
		d.exec.Lock()
		_, _ = qe.handler(qe.event)
		d.exec.Unlock()
		d.metrics.handled(qe.event.Command)
	}
}

func (d *Dispatcher) withLock(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		d.exec.Lock()
		result, err := h(e)
		d.exec.Unlock()
		d.metrics.handled(command)
		return result, err
	}
}

func (d *Dispatcher) withQueue(command string, blocking bool, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		d.mu.RLock()
		defer d.mu.RUnlock()

		if d.closed {
			return nil, fmt.Errorf("%w: %s", ErrClosed, command)
		}

		qe := queuedEvent{event: e, handler: h}
		if blocking {
			d.queue <- qe
			return "queued", nil
		}

		select {
		case d.queue <- qe:
			return "queued", nil
		default:
			d.metrics.drop(command)
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)

		if err != nil {
			d.logger.Error("event failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("event complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}

package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/LVPlayground/gamemode/internal/dispatcher"

type metrics struct {
	processed metric.Int64Counter
	dropped   metric.Int64Counter
}

// newMetrics registers the dispatcher instruments on the global meter provider, which is a
// no-op until OTel is configured. queueLen is sampled for the queue gauge.
func newMetrics(queueLen func() int) (*metrics, error) {
	m := otel.Meter(instrumentationName)

	processed, err := m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Events handled, by command"))
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	dropped, err := m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Queued events dropped because the queue was full"))
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	_, err = m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Events waiting in the queue"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(queueLen()))
			return nil
		}))
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	return &metrics{processed: processed, dropped: dropped}, nil
}

func (m *metrics) handled(command string) {
	m.processed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}

func (m *metrics) drop(command string) {
	m.dropped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("command", command)))
}

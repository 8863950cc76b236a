package vehicle

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/LVPlayground/gamemode/internal/vehicle"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	created        metric.Int64Counter
	disposed       metric.Int64Counter
	hostFailures   metric.Int64Counter
	observerEvents metric.Int64Counter
	active         metric.Int64UpDownCounter
}

func newMetrics() (*metrics, error) {
	m := meter()
	out := &metrics{}

	var err error

	out.created, err = m.Int64Counter(
		"vehicles.created",
		metric.WithDescription("Total vehicles created"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating created counter: %w", err)
	}

	out.disposed, err = m.Int64Counter(
		"vehicles.disposed",
		metric.WithDescription("Total vehicles disposed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating disposed counter: %w", err)
	}

	out.hostFailures, err = m.Int64Counter(
		"vehicles.host.failures",
		metric.WithDescription("Total vehicle creations declined by the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating host failure counter: %w", err)
	}

	out.observerEvents, err = m.Int64Counter(
		"vehicles.observer.events",
		metric.WithDescription("Total observer notifications delivered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating observer event counter: %w", err)
	}

	out.active, err = m.Int64UpDownCounter(
		"vehicles.active",
		metric.WithDescription("Vehicles currently registered"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating active counter: %w", err)
	}

	return out, nil
}

func (m *metrics) delivered(event string, n int) {
	if n == 0 {
		return
	}
	m.observerEvents.Add(context.Background(), int64(n),
		metric.WithAttributes(attribute.String("event", event)))
}

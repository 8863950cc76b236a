package journal

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/LVPlayground/gamemode/internal/journal"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	written metric.Int64Counter
	failed  metric.Int64Counter
	dropped metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := meter()
	out := &metrics{}

	var err error

	out.written, err = m.Int64Counter(
		"journal.records.written",
		metric.WithDescription("Records written to the journal backend"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating written counter: %w", err)
	}

	out.failed, err = m.Int64Counter(
		"journal.records.failed",
		metric.WithDescription("Records the journal backend refused"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	out.dropped, err = m.Int64Counter(
		"journal.records.dropped",
		metric.WithDescription("Records dropped because the journal queue was full"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return out, nil
}

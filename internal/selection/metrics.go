package selection

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/metinatakli/movie-seat-selection/internal/selection"

type instruments struct {
	polls      metric.Int64Counter
	holdCalls  metric.Int64Counter
	seatsLost  metric.Int64Counter
	expiries   metric.Int64Counter
	openScreen metric.Int64UpDownCounter
}

var (
	metricsOnce sync.Once
	metrics     *instruments
)

// meters returns the package instruments. They are created against the global
// meter provider, which forwards to the real provider once telemetry is set up.
func meters() *instruments {
	metricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		m := &instruments{}

		var err error

		m.polls, err = meter.Int64Counter("seat_selection.polls",
			metric.WithDescription("Seat availability polls by outcome"))
		handleErr(err)

		m.holdCalls, err = meter.Int64Counter("seat_selection.hold_calls",
			metric.WithDescription("Hold, extend and release calls by outcome"))
		handleErr(err)

		m.seatsLost, err = meter.Int64Counter("seat_selection.seats_lost",
			metric.WithDescription("Selected seats dropped by reconciliation"))
		handleErr(err)

		m.expiries, err = meter.Int64Counter("seat_selection.hold_expiries",
			metric.WithDescription("Selections cleared by the hold countdown"))
		handleErr(err)

		m.openScreen, err = meter.Int64UpDownCounter("seat_selection.open_screens",
			metric.WithDescription("Seat selection screens currently open"))
		handleErr(err)

		metrics = m
	})

	return metrics
}

func handleErr(err error) {
	if err != nil {
		otel.Handle(err)
	}
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}

func (m *instruments) recordPoll(ctx context.Context, result string) {
	m.polls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result)))
}

func (m *instruments) recordHoldCall(ctx context.Context, operation string, seats int, err error) {
	m.holdCalls.Add(ctx, int64(seats), metric.WithAttributes(attribute.String("operation", operation), outcome(err)))
}

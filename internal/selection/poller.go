package selection

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

type (
	fetchFunc func(ctx context.Context) ([]domain.Seat, error)
	applyFunc func(seats []domain.Seat, requestedAt time.Time)
)

// Poller fetches the full seat list on a fixed interval and hands every
// successful result to apply. Failed fetches leave local state untouched and
// are retried on the next tick.
type Poller struct {
	interval time.Duration
	fetch    fetchFunc
	apply    applyFunc
	now      func() time.Time
	logger   *slog.Logger

	inFlight atomic.Bool
	trigger  chan struct{}
}

func NewPoller(interval time.Duration, fetch fetchFunc, apply applyFunc, now func() time.Time, logger *slog.Logger) *Poller {
	return &Poller{
		interval: interval,
		fetch:    fetch,
		apply:    apply,
		now:      now,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		case <-p.trigger:
			p.Poll(ctx)
		}
	}
}

// Trigger asks the running loop for an immediate poll. Requests made while
// one is already pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Poll runs a single fetch and apply cycle. It reports whether a snapshot was
// applied; a poll is skipped while another one is still in flight.
func (p *Poller) Poll(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.logger.Debug("skipping seat poll, previous poll still in flight")
		meters().recordPoll(ctx, "skipped")
		return false
	}
	defer p.inFlight.Store(false)

	requestedAt := p.now()

	seats, err := p.fetch(ctx)
	if ctx.Err() != nil {
		return false
	}

	if err != nil {
		p.logger.Warn("seat poll failed, keeping current seat state", "error", err)
		meters().recordPoll(ctx, "error")
		return false
	}

	p.apply(seats, requestedAt)
	meters().recordPoll(ctx, "ok")

	return true
}

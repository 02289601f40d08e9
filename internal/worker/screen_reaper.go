package worker

import (
	"context"
	"log/slog"
	"time"
)

// IdleScreens closes seat selections nobody used for a while.
type IdleScreens interface {
	CloseIdle(ctx context.Context, idleFor time.Duration, retain func(sessionID string) bool) int
}

// DraftChecker reports whether a session has a booking in progress.
type DraftChecker interface {
	HasCurrentBooking(ctx context.Context, sessionID string) (bool, error)
}

// ScreenReaper periodically closes abandoned seat selections and releases
// their holds. Sessions that already proceeded to payment keep their seats.
type ScreenReaper struct {
	screens  IdleScreens
	drafts   DraftChecker
	interval time.Duration
	idleFor  time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewScreenReaper(
	screens IdleScreens,
	drafts DraftChecker,
	interval time.Duration,
	idleFor time.Duration,
	logger *slog.Logger,
) *ScreenReaper {
	return &ScreenReaper{
		screens:  screens,
		drafts:   drafts,
		interval: interval,
		idleFor:  idleFor,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (c *ScreenReaper) Start(ctx context.Context) {
	c.logger.Info("screen reaper started", "interval", c.interval, "idle_for", c.idleFor)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("screen reaper stopped", "reason", "context cancelled")
			return
		case <-c.stopCh:
			c.logger.Info("screen reaper stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *ScreenReaper) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *ScreenReaper) cleanup(ctx context.Context) {
	count := c.screens.CloseIdle(ctx, c.idleFor, func(sessionID string) bool {
		return c.hasDraft(ctx, sessionID)
	})

	if count > 0 {
		c.logger.Info("closed idle seat selections", "count", count)
	} else {
		c.logger.Debug("no idle seat selections")
	}
}

// hasDraft keeps the selection when the draft store cannot be asked.
func (c *ScreenReaper) hasDraft(ctx context.Context, sessionID string) bool {
	ok, err := c.drafts.HasCurrentBooking(ctx, sessionID)
	if err != nil {
		c.logger.Error("failed to look up booking draft", "seat_session", sessionID, "error", err)
		return true
	}

	return ok
}

package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

// Registry keeps the open seat selection screen of every booking session. A
// session has at most one screen; opening another showtime closes the
// previous one.
type Registry struct {
	seats     domain.SeatBackend
	showtimes domain.ShowtimeBackend
	opts      Options
	logger    *slog.Logger
	baseCtx   context.Context

	mu      sync.Mutex
	screens map[string]*Screen
}

// NewRegistry returns a registry whose screens poll until ctx is cancelled or
// they are closed.
func NewRegistry(ctx context.Context, seats domain.SeatBackend, showtimes domain.ShowtimeBackend, opts Options) *Registry {
	opts = opts.withDefaults()

	return &Registry{
		seats:     seats,
		showtimes: showtimes,
		opts:      opts,
		logger:    opts.Logger,
		baseCtx:   ctx,
		screens:   make(map[string]*Screen),
	}
}

func (r *Registry) MaxSeats() int {
	return r.opts.MaxSeats
}

func (r *Registry) HoldDuration() time.Duration {
	return r.opts.HoldDuration
}

// Open returns the session's screen for showtimeID, loading and starting a
// new one when needed.
func (r *Registry) Open(ctx context.Context, session domain.BookingSession, showtimeID string) (*Screen, error) {
	if screen, ok := r.lookup(session.ID); ok {
		if screen.ShowtimeID() == showtimeID {
			return screen, nil
		}

		r.logger.Info("leaving seat selection for another showtime",
			"seat_session", session.ID, "from", screen.ShowtimeID(), "to", showtimeID)
		r.Close(ctx, session, true)
	}

	showtime, err := r.showtimes.GetShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	screen := NewScreen(r.seats, *showtime, session.ID, r.opts)

	err = screen.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening seat selection for showtime %s: %w", showtimeID, err)
	}

	r.mu.Lock()
	current := r.screens[session.ID]
	if current != nil && current.ShowtimeID() == showtimeID && !current.Closed() {
		r.mu.Unlock()
		return current, nil
	}
	r.screens[session.ID] = screen
	r.mu.Unlock()

	if current != nil {
		current.Close(ctx, true)
		meters().openScreen.Add(ctx, -1)
	}

	screen.Start(r.baseCtx)
	meters().openScreen.Add(ctx, 1)

	r.logger.Debug("seat selection opened", "seat_session", session.ID, "showtime_id", showtimeID)

	return screen, nil
}

// Get returns the session's open screen for showtimeID.
func (r *Registry) Get(session domain.BookingSession, showtimeID string) (*Screen, error) {
	screen, ok := r.lookup(session.ID)
	if !ok || screen.ShowtimeID() != showtimeID {
		return nil, domain.ErrScreenNotFound
	}

	return screen, nil
}

// Current returns the session's open screen, whatever its showtime.
func (r *Registry) Current(session domain.BookingSession) (*Screen, bool) {
	return r.lookup(session.ID)
}

func (r *Registry) lookup(sessionID string) (*Screen, bool) {
	r.mu.Lock()
	screen, ok := r.screens[sessionID]
	r.mu.Unlock()

	if !ok || screen.Closed() {
		return nil, false
	}

	return screen, true
}

// Close tears down the session's screen. With release set, its selected seats
// are released on the backend.
func (r *Registry) Close(ctx context.Context, session domain.BookingSession, release bool) []string {
	r.mu.Lock()
	screen, ok := r.screens[session.ID]
	delete(r.screens, session.ID)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	meters().openScreen.Add(ctx, -1)

	return screen.Close(ctx, release)
}

// Refresh triggers an immediate poll on every screen showing showtimeID and
// returns how many were triggered.
func (r *Registry) Refresh(showtimeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, screen := range r.screens {
		if screen.ShowtimeID() == showtimeID {
			screen.Refresh()
			n++
		}
	}

	return n
}

// CloseIdle closes screens nobody watched or used for idleFor, releasing their
// seats. Screens with a live selection whose session retain reports true are
// kept. It returns the number of closed screens.
func (r *Registry) CloseIdle(ctx context.Context, idleFor time.Duration, retain func(sessionID string) bool) int {
	r.mu.Lock()
	candidates := make(map[string]*Screen)
	for sessionID, screen := range r.screens {
		if screen.Idle(idleFor) {
			candidates[sessionID] = screen
		}
	}
	r.mu.Unlock()

	// retain may reach out to the draft store, so it runs unlocked.
	for sessionID, screen := range candidates {
		if retain != nil && screen.HasSelection() && retain(sessionID) {
			delete(candidates, sessionID)
		}
	}

	var idle []*Screen
	r.mu.Lock()
	for sessionID, screen := range candidates {
		if r.screens[sessionID] != screen || !screen.Idle(idleFor) {
			continue
		}

		idle = append(idle, screen)
		delete(r.screens, sessionID)
	}
	r.mu.Unlock()

	for _, screen := range idle {
		meters().openScreen.Add(ctx, -1)
		screen.Close(ctx, true)
	}

	return len(idle)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.screens)
}

// Shutdown closes every screen and releases their seats.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	screens := r.screens
	r.screens = make(map[string]*Screen)
	r.mu.Unlock()

	for _, screen := range screens {
		meters().openScreen.Add(ctx, -1)
		screen.Close(ctx, true)
	}
}

package selection

import (
	"context"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

const (
	SessionKeySeatSession = "seatSessionId"
	sessionIDPrefix       = "session_"
)

// SessionStore is the part of a session manager needed to keep the seat
// session id. *scs.SessionManager satisfies it.
type SessionStore interface {
	GetString(ctx context.Context, key string) string
	Put(ctx context.Context, key string, val any)
}

// EnsureSessionID returns the seat session id stored in the session, creating
// and storing a new one when absent.
func EnsureSessionID(ctx context.Context, store SessionStore) string {
	if id := store.GetString(ctx, SessionKeySeatSession); id != "" {
		return id
	}

	id := sessionIDPrefix + uuid.NewString()
	store.Put(ctx, SessionKeySeatSession, id)

	return id
}

// HoldSession issues hold and release calls for one showtime on behalf of one
// seat session. Failures are returned as is; callers re-sync from the next poll.
type HoldSession struct {
	backend    domain.SeatBackend
	showtimeID string
	sessionID  string
}

func NewHoldSession(backend domain.SeatBackend, showtimeID, sessionID string) *HoldSession {
	return &HoldSession{
		backend:    backend,
		showtimeID: showtimeID,
		sessionID:  sessionID,
	}
}

func (h *HoldSession) SessionID() string {
	return h.sessionID
}

func (h *HoldSession) Hold(ctx context.Context, seatIDs []string) error {
	err := h.backend.HoldSeats(ctx, h.showtimeID, seatIDs, h.sessionID)
	meters().recordHoldCall(ctx, "hold", len(seatIDs), err)

	return err
}

// Extend refreshes the hold on seatIDs. The backend treats it as a new hold.
func (h *HoldSession) Extend(ctx context.Context, seatIDs []string) error {
	err := h.backend.HoldSeats(ctx, h.showtimeID, seatIDs, h.sessionID)
	meters().recordHoldCall(ctx, "extend", len(seatIDs), err)

	return err
}

func (h *HoldSession) Release(ctx context.Context, seatIDs []string) error {
	err := h.backend.ReleaseSeats(ctx, h.showtimeID, seatIDs)
	meters().recordHoldCall(ctx, "release", len(seatIDs), err)

	return err
}

// Package draft keeps the per-session handoff between seat selection and
// checkout: the booking in progress and the last confirmed booking.
package draft

import (
	"context"
	"fmt"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

// Store holds one booking draft and one confirmation per booking session.
// Writes are last-write-wins. Missing entries are reported as
// domain.ErrDraftNotFound and domain.ErrBookingNotFound.
type Store interface {
	SetCurrentBooking(ctx context.Context, sessionID string, draft domain.BookingDraft) error
	GetCurrentBooking(ctx context.Context, sessionID string) (*domain.BookingDraft, error)
	ClearCurrentBooking(ctx context.Context, sessionID string) error
	HasCurrentBooking(ctx context.Context, sessionID string) (bool, error)

	// TakeCurrentBooking removes and returns the draft so that only one
	// checkout can consume it.
	TakeCurrentBooking(ctx context.Context, sessionID string) (*domain.BookingDraft, error)
	// RestoreCurrentBooking puts a taken draft back unless a newer one was
	// stored meanwhile.
	RestoreCurrentBooking(ctx context.Context, sessionID string, draft domain.BookingDraft) error

	SetLastConfirmedBooking(ctx context.Context, sessionID string, confirmation domain.BookingConfirmation) error
	GetLastConfirmedBooking(ctx context.Context, sessionID string) (*domain.BookingConfirmation, error)
	ClearLastConfirmedBooking(ctx context.Context, sessionID string) error
}

func draftKey(sessionID string) string {
	return fmt.Sprintf("booking_draft:%s", sessionID)
}

func confirmationKey(sessionID string) string {
	return fmt.Sprintf("booking_confirmation:%s", sessionID)
}

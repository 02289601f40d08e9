package domain

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrShowtimeNotFound  = errors.New("showtime not found")
	ErrSeatNotFound      = errors.New("seat not found for showtime")
	ErrSeatUnavailable   = errors.New("seat no longer available")
	ErrToggleInProgress  = errors.New("a request for this seat is already in progress")
	ErrSelectionLimit    = errors.New("maximum number of seats already selected")
	ErrEmptySelection    = errors.New("no seats selected")
	ErrMalformedSeatData = errors.New("malformed seat data")
	ErrScreenNotFound    = errors.New("seat selection not started for showtime")
	ErrScreenClosed      = errors.New("seat selection has been closed")
	ErrDraftNotFound     = errors.New("no booking in progress")
	ErrBookingNotFound   = errors.New("no confirmed booking in session")
)

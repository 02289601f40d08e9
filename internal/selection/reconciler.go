package selection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

// selectionSet is the ordered set of seats the session intends to book, plus
// the seats with a hold or release call in flight.
type selectionSet struct {
	order     []string
	confirmed map[string]time.Time
	inFlight  map[string]bool
}

func newSelectionSet() *selectionSet {
	return &selectionSet{
		confirmed: make(map[string]time.Time),
		inFlight:  make(map[string]bool),
	}
}

func (s *selectionSet) contains(id string) bool {
	_, ok := s.confirmed[id]
	return ok
}

func (s *selectionSet) len() int {
	return len(s.order)
}

func (s *selectionSet) ids() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *selectionSet) add(id string, at time.Time) {
	if !s.contains(id) {
		s.order = append(s.order, id)
	}
	s.confirmed[id] = at
}

// remove drops id from the set. Removing an absent id is a no-op.
func (s *selectionSet) remove(id string) bool {
	if !s.contains(id) {
		return false
	}

	delete(s.confirmed, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return true
}

func (s *selectionSet) clear() []string {
	ids := s.order
	s.order = nil
	s.confirmed = make(map[string]time.Time)
	return ids
}

// begin marks a call for id as in flight. It returns false when one already is.
func (s *selectionSet) begin(id string, holding bool) bool {
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = holding
	return true
}

func (s *selectionSet) end(id string) {
	delete(s.inFlight, id)
}

func (s *selectionSet) pendingHolds() int {
	n := 0
	for _, holding := range s.inFlight {
		if holding {
			n++
		}
	}
	return n
}

// reconcile drops every member the snapshot does not report as held by
// sessionID. Members confirmed after the snapshot was requested are kept and
// returned as stale since the snapshot predates their hold. Members missing
// from the snapshot are always dropped.
func (s *selectionSet) reconcile(snapshot map[string]domain.Seat, sessionID string, requestedAt time.Time) (dropped, stale []string) {
	for _, id := range s.ids() {
		seat, ok := snapshot[id]
		if ok && seat.HeldBy(sessionID) {
			continue
		}

		if ok && s.confirmed[id].After(requestedAt) {
			stale = append(stale, id)
			continue
		}

		s.remove(id)
		dropped = append(dropped, id)
	}

	return dropped, stale
}

// Toggle selects or deselects a seat. It reports whether the seat is selected
// afterwards. Booked seats and seats held by other sessions are rejected with
// domain.ErrSeatUnavailable, a toggle for a seat with a call in flight with
// domain.ErrToggleInProgress; neither issues a backend call.
func (s *Screen) Toggle(ctx context.Context, seatID string) (bool, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return false, domain.ErrScreenClosed
	}
	s.touchLocked()

	seat, ok := s.seats[seatID]
	if !ok {
		s.mu.Unlock()
		return false, domain.ErrSeatNotFound
	}

	if _, busy := s.selection.inFlight[seatID]; busy {
		s.mu.Unlock()
		return s.selection.contains(seatID), domain.ErrToggleInProgress
	}

	selecting := !s.selection.contains(seatID)

	if selecting && seat.BlockedFor(s.sessionID) {
		s.pushNoticeLocked(domain.NoticeSeatUnavailable, seatID, fmt.Sprintf("Seat %s is not available", seat.Label()))
		s.mu.Unlock()
		return false, domain.ErrSeatUnavailable
	}

	if selecting && s.selection.len()+s.selection.pendingHolds() >= s.opts.MaxSeats {
		s.mu.Unlock()
		return false, domain.ErrSelectionLimit
	}

	s.selection.begin(seatID, selecting)
	s.mu.Unlock()

	// The outcome is applied even if the caller goes away mid-call.
	callCtx := context.WithoutCancel(ctx)

	var err error
	if selecting {
		err = s.holds.Hold(callCtx, []string{seatID})
	} else {
		err = s.holds.Release(callCtx, []string{seatID})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.end(seatID)

	if s.closed {
		if selecting && err == nil {
			go s.releaseOrphan(seatID)
		}
		return false, domain.ErrScreenClosed
	}

	if err != nil {
		label := s.labelLocked(seatID)

		switch {
		case selecting && errors.Is(err, domain.ErrSeatUnavailable):
			s.pushNoticeLocked(domain.NoticeSeatUnavailable, seatID, fmt.Sprintf("Seat %s is no longer available", label))
		case selecting:
			s.pushNoticeLocked(domain.NoticeHoldFailed, seatID, fmt.Sprintf("Could not hold seat %s, please try again", label))
		default:
			s.pushNoticeLocked(domain.NoticeReleaseFailed, seatID, fmt.Sprintf("Could not release seat %s, please try again", label))
		}

		s.poller.Trigger()
		return !selecting, err
	}

	now := s.opts.Now()

	if selecting {
		expiry := now.Add(s.opts.HoldDuration)

		s.selection.add(seatID, now)
		s.markHeldLocked(seatID, expiry)
		s.countdown.Start(expiry)
		s.remaining = remainingSeconds(expiry, now)
	} else {
		s.selection.remove(seatID)
		s.clearHoldLocked(seatID)
		s.stopIfEmptyLocked()
	}

	s.publishViewLocked()

	return selecting, nil
}

// Extend re-holds every selected seat and restarts the countdown from a fresh
// expiry. On failure the countdown keeps running unchanged.
func (s *Screen) Extend(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return time.Time{}, domain.ErrScreenClosed
	}
	s.touchLocked()
	ids := s.selection.ids()
	s.mu.Unlock()

	if len(ids) == 0 {
		return time.Time{}, domain.ErrEmptySelection
	}

	err := s.holds.Extend(context.WithoutCancel(ctx), ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return time.Time{}, domain.ErrScreenClosed
	}

	if err != nil {
		s.pushNoticeLocked(domain.NoticeExtendFailed, "", "Could not extend your seat hold, please try again")
		s.poller.Trigger()
		return time.Time{}, err
	}

	if s.selection.len() == 0 {
		return time.Time{}, domain.ErrEmptySelection
	}

	now := s.opts.Now()
	expiry := now.Add(s.opts.HoldDuration)

	for _, id := range ids {
		if s.selection.contains(id) {
			s.markHeldLocked(id, expiry)
		}
	}

	s.countdown.Start(expiry)
	s.remaining = remainingSeconds(expiry, now)
	s.publishViewLocked()

	return expiry, nil
}

// reconcileAfterPoll replaces the seat snapshot with the server's and drops
// selected seats the server no longer reports as held by this session.
func (s *Screen) reconcileAfterPoll(seats []domain.Seat, requestedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.seats = indexSeats(seats)

	dropped, stale := s.selection.reconcile(s.seats, s.sessionID, requestedAt)

	if len(stale) > 0 {
		expiry, _ := s.countdown.Expiry()
		for _, id := range stale {
			s.markHeldLocked(id, expiry)
		}
	}

	for _, id := range dropped {
		s.pushNoticeLocked(domain.NoticeSeatLost, id, fmt.Sprintf("Seat %s is no longer available", s.labelLocked(id)))
	}

	if len(dropped) > 0 {
		meters().seatsLost.Add(context.Background(), int64(len(dropped)))
		s.logger.Info("dropped seats no longer held by this session", "seat_ids", dropped)
		s.stopIfEmptyLocked()
	}

	s.publishViewLocked()
}

// expireHold runs when the countdown of generation gen reaches zero. The
// selection is cleared and its seats released in one best-effort call.
func (s *Screen) expireHold(gen uint64) {
	s.mu.Lock()

	if s.closed || !s.countdown.Current(gen) {
		s.mu.Unlock()
		return
	}

	ids := s.selection.clear()
	for _, id := range ids {
		s.clearHoldLocked(id)
	}
	s.remaining = 0

	s.pushNoticeLocked(domain.NoticeHoldExpired, "", "Your seat hold expired, please reselect your seats")
	s.publishViewLocked()
	s.mu.Unlock()

	meters().expiries.Add(context.Background(), 1)

	if len(ids) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		err := s.holds.Release(ctx, ids)
		if err != nil {
			s.logger.Warn("failed to release seats after hold expiry", "seat_ids", ids, "error", err)
		}
	}

	s.poller.Trigger()
}

func (s *Screen) releaseOrphan(seatID string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	err := s.holds.Release(ctx, []string{seatID})
	if err != nil {
		s.logger.Warn("failed to release seat held after close", "seat_id", seatID, "error", err)
	}
}

func (s *Screen) stopIfEmptyLocked() {
	if s.selection.len() > 0 {
		return
	}

	s.countdown.Stop()
	s.remaining = 0
}

func (s *Screen) markHeldLocked(seatID string, expiry time.Time) {
	seat, ok := s.seats[seatID]
	if !ok {
		return
	}

	owner := s.sessionID
	seat.IsHeld = true
	seat.HoldOwner = &owner
	if !expiry.IsZero() {
		seat.HoldExpiry = &expiry
	}

	s.seats[seatID] = seat
}

func (s *Screen) clearHoldLocked(seatID string) {
	seat, ok := s.seats[seatID]
	if !ok || !seat.HeldBy(s.sessionID) {
		return
	}

	seat.IsHeld = false
	seat.HoldOwner = nil
	seat.HoldExpiry = nil

	s.seats[seatID] = seat
}

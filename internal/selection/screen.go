package selection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultTickInterval = time.Second
	DefaultHoldDuration = 10 * time.Minute
	DefaultMaxSeats     = 10

	defaultNoticeBuffer = 32
	subscriberBuffer    = 16
	releaseTimeout      = 10 * time.Second
)

type Options struct {
	PollInterval time.Duration
	TickInterval time.Duration
	HoldDuration time.Duration
	MaxSeats     int
	NoticeBuffer int
	Now          func() time.Time
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.HoldDuration <= 0 {
		o.HoldDuration = DefaultHoldDuration
	}
	if o.MaxSeats <= 0 {
		o.MaxSeats = DefaultMaxSeats
	}
	if o.NoticeBuffer <= 0 {
		o.NoticeBuffer = defaultNoticeBuffer
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return o
}

type EventType string

const (
	EventView      EventType = "view"
	EventCountdown EventType = "countdown"
	EventNotice    EventType = "notice"
)

type Event struct {
	Type             EventType
	View             *View
	Notice           *domain.Notice
	RemainingSeconds int
}

type SeatView struct {
	domain.Seat
	State domain.SeatState
}

type RowView struct {
	Row   string
	Seats []SeatView
}

type View struct {
	Showtime         domain.Showtime
	Rows             []RowView
	SelectedSeatIDs  []string
	SelectedLabels   []string
	TotalAmount      decimal.Decimal
	MaxSeats         int
	AvailableSeats   int
	HoldExpiry       *time.Time
	RemainingSeconds int
}

// Screen is the seat selection state of one showtime for one seat session.
// It owns the seat snapshot, the selected-seats set, the poller and the hold
// countdown.
type Screen struct {
	showtime  domain.Showtime
	sessionID string
	backend   domain.SeatBackend
	holds     *HoldSession
	poller    *Poller
	countdown *Countdown
	opts      Options
	logger    *slog.Logger

	mu         sync.Mutex
	seats      map[string]domain.Seat
	selection  *selectionSet
	remaining  int
	notices    []domain.Notice
	subs       map[chan Event]struct{}
	lastActive time.Time
	closed     bool
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewScreen(backend domain.SeatBackend, showtime domain.Showtime, sessionID string, opts Options) *Screen {
	opts = opts.withDefaults()

	s := &Screen{
		showtime:  showtime,
		sessionID: sessionID,
		backend:   backend,
		holds:     NewHoldSession(backend, showtime.ID, sessionID),
		opts:      opts,
		logger:    opts.Logger.With("showtime_id", showtime.ID, "seat_session", sessionID),
		seats:     make(map[string]domain.Seat),
		selection: newSelectionSet(),
		subs:      make(map[chan Event]struct{}),
	}

	s.lastActive = opts.Now()
	s.poller = NewPoller(opts.PollInterval, s.fetchSeats, s.reconcileAfterPoll, opts.Now, s.logger)
	s.countdown = NewCountdown(opts.TickInterval, opts.Now, s.onCountdownTick, s.expireHold)

	return s
}

func (s *Screen) ShowtimeID() string {
	return s.showtime.ID
}

func (s *Screen) SessionID() string {
	return s.sessionID
}

func (s *Screen) Showtime() domain.Showtime {
	return s.showtime
}

// Load fetches the initial seat layout. An empty layout is initialized on the
// backend once; a layout that is still empty or structurally invalid is fatal.
func (s *Screen) Load(ctx context.Context) error {
	seats, err := s.backend.FetchSeats(ctx, s.showtime.ID)
	if err != nil {
		return fmt.Errorf("loading seats: %w", err)
	}

	if len(seats) == 0 {
		s.logger.Info("seat layout empty, initializing")

		err = s.backend.InitializeSeats(ctx, s.showtime.ID)
		if err != nil {
			return fmt.Errorf("initializing seats: %w", err)
		}

		seats, err = s.backend.FetchSeats(ctx, s.showtime.ID)
		if err != nil {
			return fmt.Errorf("loading seats: %w", err)
		}

		if len(seats) == 0 {
			return fmt.Errorf("%w: no seats for showtime %s", domain.ErrMalformedSeatData, s.showtime.ID)
		}
	}

	err = domain.ValidateSeats(seats)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.seats = indexSeats(seats)
	s.mu.Unlock()

	return nil
}

// Start runs the poller until the screen is closed or ctx is cancelled.
func (s *Screen) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.poller.Run(ctx)
	}()
}

// Refresh requests an immediate poll.
func (s *Screen) Refresh() {
	s.poller.Trigger()
}

// Close tears the screen down: polling and the countdown stop, subscribers are
// disconnected and the selection is cleared. With release set, the seats that
// were selected are released on the backend. It returns those seat ids.
func (s *Screen) Close(ctx context.Context, release bool) []string {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.countdown.Stop()

	ids := s.selection.clear()

	for ch := range s.subs {
		close(ch)
	}
	s.subs = nil

	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}

	if release && len(ids) > 0 {
		err := s.holds.Release(context.WithoutCancel(ctx), ids)
		if err != nil {
			s.logger.Warn("failed to release seats on close", "seat_ids", ids, "error", err)
		}
	}

	s.logger.Debug("seat selection closed", "released", release, "seat_ids", ids)

	return ids
}

func (s *Screen) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *Screen) HasSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selection.len() > 0
}

// Idle reports whether nobody watched or used the screen for idleFor.
func (s *Screen) Idle(idleFor time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subs) == 0 && s.opts.Now().Sub(s.lastActive) >= idleFor
}

func (s *Screen) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touchLocked()

	return s.viewLocked()
}

// DrainNotices returns and forgets the notices raised since the last call.
func (s *Screen) DrainNotices() []domain.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	notices := s.notices
	s.notices = nil

	return notices
}

// Subscribe streams view, countdown and notice events. The current view is
// delivered first. The channel is closed when the screen closes or the
// returned cancel function is called.
func (s *Screen) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.subs[ch] = struct{}{}
	s.touchLocked()

	view := s.viewLocked()
	ch <- Event{Type: EventView, View: &view}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
			s.touchLocked()
		}
	}
}

// Proceed turns the current selection into a booking draft.
func (s *Screen) Proceed() (domain.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.BookingDraft{}, domain.ErrScreenClosed
	}
	s.touchLocked()

	ids := s.selection.ids()
	if len(ids) == 0 {
		return domain.BookingDraft{}, domain.ErrEmptySelection
	}

	seats := make([]domain.Seat, 0, len(ids))
	for _, id := range ids {
		seat, ok := s.seats[id]
		if !ok {
			return domain.BookingDraft{}, fmt.Errorf("%w: selected seat %s missing from layout", domain.ErrMalformedSeatData, id)
		}
		seats = append(seats, seat)
	}

	return domain.NewBookingDraft(s.showtime, seats), nil
}

func (s *Screen) fetchSeats(ctx context.Context) ([]domain.Seat, error) {
	seats, err := s.backend.FetchSeats(ctx, s.showtime.ID)
	if err != nil {
		return nil, err
	}

	err = domain.ValidateSeats(seats)
	if err != nil {
		return nil, err
	}

	return seats, nil
}

func (s *Screen) onCountdownTick(gen uint64, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.countdown.Current(gen) {
		return
	}

	s.remaining = remaining
	s.broadcastLocked(Event{Type: EventCountdown, RemainingSeconds: remaining})
}

func (s *Screen) touchLocked() {
	s.lastActive = s.opts.Now()
}

func (s *Screen) viewLocked() View {
	seats := make([]domain.Seat, 0, len(s.seats))
	for _, seat := range s.seats {
		seats = append(seats, seat)
	}
	domain.SortSeats(seats)

	view := View{
		Showtime:         s.showtime,
		MaxSeats:         s.opts.MaxSeats,
		TotalAmount:      decimal.Zero,
		RemainingSeconds: s.remaining,
		SelectedSeatIDs:  []string{},
		SelectedLabels:   []string{},
	}

	for _, seat := range seats {
		state := s.stateLocked(seat)

		if n := len(view.Rows); n == 0 || view.Rows[n-1].Row != seat.Row {
			view.Rows = append(view.Rows, RowView{Row: seat.Row})
		}
		row := &view.Rows[len(view.Rows)-1]
		row.Seats = append(row.Seats, SeatView{Seat: seat, State: state})

		switch state {
		case domain.SeatStateSelected:
			view.SelectedSeatIDs = append(view.SelectedSeatIDs, seat.ID)
			view.SelectedLabels = append(view.SelectedLabels, seat.Label())
			view.TotalAmount = view.TotalAmount.Add(seat.Price)
		case domain.SeatStateAvailable:
			view.AvailableSeats++
		}
	}

	if expiry, ok := s.countdown.Expiry(); ok {
		view.HoldExpiry = &expiry
	}

	return view
}

func (s *Screen) stateLocked(seat domain.Seat) domain.SeatState {
	switch {
	case seat.IsBooked:
		return domain.SeatStateBooked
	case s.selection.contains(seat.ID):
		return domain.SeatStateSelected
	case seat.BlockedFor(s.sessionID):
		return domain.SeatStateHeld
	default:
		return domain.SeatStateAvailable
	}
}

func (s *Screen) pushNoticeLocked(kind domain.NoticeKind, seatID, message string) {
	notice := domain.Notice{
		Kind:    kind,
		SeatID:  seatID,
		Message: message,
		At:      s.opts.Now(),
	}

	s.notices = append(s.notices, notice)
	if over := len(s.notices) - s.opts.NoticeBuffer; over > 0 {
		s.notices = s.notices[over:]
	}

	s.logger.Info("seat selection notice", "kind", kind, "seat_id", seatID)
	s.broadcastLocked(Event{Type: EventNotice, Notice: &notice})
}

func (s *Screen) publishViewLocked() {
	view := s.viewLocked()
	s.broadcastLocked(Event{Type: EventView, View: &view})
}

func (s *Screen) broadcastLocked(ev Event) {
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("subscriber too slow, dropping event", "event", ev.Type)
		}
	}
}

func (s *Screen) labelLocked(seatID string) string {
	if seat, ok := s.seats[seatID]; ok {
		return seat.Label()
	}
	return seatID
}

func indexSeats(seats []domain.Seat) map[string]domain.Seat {
	index := make(map[string]domain.Seat, len(seats))
	for _, seat := range seats {
		index[seat.ID] = seat
	}
	return index
}

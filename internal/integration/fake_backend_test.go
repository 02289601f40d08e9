package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const backendDateTime = "2006-01-02T15:04:05"

type fakeSeat struct {
	ID         string          `json:"id"`
	Row        string          `json:"row"`
	Number     int             `json:"number"`
	Price      decimal.Decimal `json:"price"`
	Type       string          `json:"type"`
	IsBooked   bool            `json:"isBooked"`
	IsHeld     bool            `json:"isHeld"`
	HoldExpiry *string         `json:"holdExpiry"`
	SessionID  *string         `json:"sessionId"`
}

type fakeHoldRequest struct {
	ShowtimeID string   `json:"showtimeId"`
	SeatIDs    []string `json:"seatIds"`
	SessionID  string   `json:"sessionId"`
}

type fakeBookingRequest struct {
	ShowtimeID    string          `json:"showtimeId"`
	Seats         []string        `json:"seats"`
	SeatIDs       []string        `json:"seatIds"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CustomerEmail string          `json:"customerEmail"`
}

// fakeBackend is an in-memory booking backend serving one showtime.
type fakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	seats    map[string]*fakeSeat
	bookings []fakeBookingRequest
	holds    int
}

func newFakeBackend() *fakeBackend {
	f := &fakeBackend{}
	f.reset()

	r := chi.NewRouter()
	r.Get("/showtimes/{showtimeId}", f.getShowtime)
	r.Get("/seats/showtime/{showtimeId}", f.getSeats)
	r.Post("/seats/showtime/{showtimeId}/initialize", f.initialize)
	r.Post("/seats/hold", f.hold)
	r.Post("/seats/release", f.release)
	r.Post("/bookings", f.book)

	f.Server = httptest.NewServer(r)

	return f
}

// reset restores the layout: A1 to A3 regular, A3 booked, B1 premium.
func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seats = map[string]*fakeSeat{
		"A1": {ID: "A1", Row: "A", Number: 1, Price: decimal.NewFromInt(150), Type: "REGULAR"},
		"A2": {ID: "A2", Row: "A", Number: 2, Price: decimal.NewFromInt(150), Type: "REGULAR"},
		"A3": {ID: "A3", Row: "A", Number: 3, Price: decimal.NewFromInt(150), Type: "REGULAR", IsBooked: true},
		"B1": {ID: "B1", Row: "B", Number: 1, Price: decimal.NewFromInt(250), Type: "PREMIUM"},
	}
	f.bookings = nil
	f.holds = 0
}

// holdFor marks seatID as held by sessionID, as another client of the
// backend would.
func (f *fakeBackend) holdFor(seatID, sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seat := f.seats[seatID]
	seat.IsHeld = true
	seat.SessionID = &sessionID
	expiry := time.Now().UTC().Add(10 * time.Minute).Format(backendDateTime)
	seat.HoldExpiry = &expiry
}

func (f *fakeBackend) book(w http.ResponseWriter, r *http.Request) {
	var req fakeBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBackendError(w, http.StatusBadRequest, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range req.SeatIDs {
		if seat, ok := f.seats[id]; !ok || seat.IsBooked {
			writeBackendError(w, http.StatusConflict, fmt.Sprintf("Seat %s is already booked", id))
			return
		}
	}

	for _, id := range req.SeatIDs {
		seat := f.seats[id]
		seat.IsBooked = true
		seat.IsHeld = false
		seat.SessionID = nil
		seat.HoldExpiry = nil
	}
	f.bookings = append(f.bookings, req)

	writeBackendJSON(w, http.StatusCreated, map[string]any{
		"id":           uuid.NewString(),
		"ticketNumber": fmt.Sprintf("TKT-%04d", len(f.bookings)),
		"qrCode":       "qr-" + req.ShowtimeID,
		"status":       "CONFIRMED",
		"seats":        req.Seats,
		"totalAmount":  req.TotalAmount,
		"bookingDate":  time.Now().UTC().Format(backendDateTime),
	})
}

func (f *fakeBackend) seat(id string) fakeSeat {
	f.mu.Lock()
	defer f.mu.Unlock()

	return *f.seats[id]
}

func (f *fakeBackend) holdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.holds
}

func (f *fakeBackend) bookingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.bookings)
}

func (f *fakeBackend) getShowtime(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "showtimeId") != showtimeID {
		// The backend answers unknown ids with a runtime error.
		writeBackendError(w, http.StatusBadRequest, "Showtime not found")
		return
	}

	writeBackendJSON(w, http.StatusOK, map[string]any{
		"id":             showtimeID,
		"movieId":        "m-1",
		"theaterId":      "t-1",
		"screen":         "Screen 1",
		"showDateTime":   showDateTime.Format(backendDateTime),
		"ticketPrice":    "150",
		"totalSeats":     4,
		"availableSeats": 3,
		"status":         "ACTIVE",
		"movie":          map[string]any{"id": "m-1", "title": "Dune", "posterUrl": "https://img.example.com/dune.jpg"},
		"theater":        map[string]any{"id": "t-1", "name": "Cinex", "location": "Kadikoy"},
	})
}

func (f *fakeBackend) getSeats(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	seats := make([]fakeSeat, 0, len(f.seats))
	for _, seat := range f.seats {
		seats = append(seats, *seat)
	}
	f.mu.Unlock()

	sort.Slice(seats, func(i, j int) bool { return seats[i].ID < seats[j].ID })

	writeBackendJSON(w, http.StatusOK, seats)
}

func (f *fakeBackend) initialize(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (f *fakeBackend) hold(w http.ResponseWriter, r *http.Request) {
	var req fakeHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBackendError(w, http.StatusBadRequest, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.holds++

	for _, id := range req.SeatIDs {
		seat, ok := f.seats[id]
		if !ok || seat.IsBooked || (seat.IsHeld && seat.SessionID != nil && *seat.SessionID != req.SessionID) {
			writeBackendError(w, http.StatusBadRequest, fmt.Sprintf("Seat %s is not available", id))
			return
		}
	}

	expiry := time.Now().UTC().Add(10 * time.Minute).Format(backendDateTime)
	for _, id := range req.SeatIDs {
		seat := f.seats[id]
		session := req.SessionID
		seat.IsHeld = true
		seat.SessionID = &session
		seat.HoldExpiry = &expiry
	}

	w.WriteHeader(http.StatusOK)
}

func (f *fakeBackend) release(w http.ResponseWriter, r *http.Request) {
	var req fakeHoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBackendError(w, http.StatusBadRequest, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range req.SeatIDs {
		if seat, ok := f.seats[id]; ok && !seat.IsBooked {
			seat.IsHeld = false
			seat.SessionID = nil
			seat.HoldExpiry = nil
		}
	}

	w.WriteHeader(http.StatusOK)
}

func writeBackendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeBackendError(w http.ResponseWriter, status int, message string) {
	writeBackendJSON(w, status, map[string]string{"error": http.StatusText(status), "message": message})
}

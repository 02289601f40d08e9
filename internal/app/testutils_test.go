package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/movie-seat-selection/api"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/metinatakli/movie-seat-selection/internal/draft"
	"github.com/metinatakli/movie-seat-selection/internal/mocks"
	"github.com/metinatakli/movie-seat-selection/internal/selection"
	"github.com/metinatakli/movie-seat-selection/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	testShowtimeID = "S1"
	testSessionID  = "session_test"
	otherSessionID = "session_other"
	testMaxSeats   = 2
)

var (
	testNow = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

	testShowtime = domain.Showtime{
		ID:           testShowtimeID,
		MovieID:      "m-1",
		TheaterID:    "t-1",
		Screen:       "Screen 1",
		ShowDateTime: time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC),
		TicketPrice:  decimal.NewFromInt(150),
		Movie:        domain.Movie{ID: "m-1", Title: "Dune", PosterUrl: "https://img.example.com/dune.jpg"},
		Theater:      domain.Theater{ID: "t-1", Name: "Cinex", Location: "Kadikoy"},
	}

	decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool {
		return a.Equal(b)
	})
)

// testSeats is a two row layout: A1 and A4 free, A2 held by another session,
// A3 booked and B1 a free premium seat.
func testSeats() []domain.Seat {
	other := otherSessionID

	return []domain.Seat{
		{ID: "A1", Row: "A", Number: 1, Price: decimal.NewFromInt(150), Type: domain.SeatTypeRegular},
		{ID: "A2", Row: "A", Number: 2, Price: decimal.NewFromInt(150), Type: domain.SeatTypeRegular, IsHeld: true, HoldOwner: &other},
		{ID: "A3", Row: "A", Number: 3, Price: decimal.NewFromInt(150), Type: domain.SeatTypeRegular, IsBooked: true},
		{ID: "A4", Row: "A", Number: 4, Price: decimal.NewFromInt(150), Type: domain.SeatTypeRegular},
		{ID: "B1", Row: "B", Number: 1, Price: decimal.NewFromInt(250), Type: domain.SeatTypePremium},
	}
}

func testDraft() domain.BookingDraft {
	return domain.BookingDraft{
		ShowtimeID:      testShowtimeID,
		ShowDateTime:    testShowtime.ShowDateTime,
		MovieID:         "m-1",
		MovieTitle:      "Dune",
		MoviePosterUrl:  "https://img.example.com/dune.jpg",
		TheaterID:       "t-1",
		TheaterName:     "Cinex",
		TheaterLocation: "Kadikoy",
		Screen:          "Screen 1",
		SeatIDs:         []string{"A1", "B1"},
		Seats:           []string{"A1", "B1"},
		TotalAmount:     decimal.NewFromInt(400),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApplication(opts ...func(*Application)) *Application {
	openapiRouter, err := newOpenAPIRouter()
	if err != nil {
		panic(err)
	}

	app := &Application{
		config:         Config{Env: "test"},
		validator:      validator.NewValidator(),
		logger:         discardLogger(),
		sessionManager: NewSessionManager(nil),
		openapi:        openapiRouter,
		bookings:       &mocks.MockBookingBackend{},
		drafts:         draft.NewMemoryStore(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// newTestRegistry returns a registry on a fixed clock whose background poll
// and countdown loops stay idle during a test.
func newTestRegistry(seats domain.SeatBackend) *selection.Registry {
	return selection.NewRegistry(context.Background(), seats, mocks.StaticShowtimes(testShowtime), selection.Options{
		PollInterval: time.Hour,
		TickInterval: time.Hour,
		MaxSeats:     testMaxSeats,
		Now:          func() time.Time { return testNow },
		Logger:       discardLogger(),
	})
}

func withSession(app *Application, r *http.Request, sessionID string) *http.Request {
	return app.contextSetBookingSession(r, domain.BookingSession{ID: sessionID})
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if len(validationResp.ValidationErrors) == 0 {
			if tt.wantErrMessage != "" && validationResp.Message != tt.wantErrMessage {
				t.Errorf("Error message = %v, want %v", validationResp.Message, tt.wantErrMessage)
			}
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

// allowReleases lets any release call succeed, for teardown of open screens.
func allowReleases(backend *mocks.MockSeatBackend) {
	backend.On("ReleaseSeats", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}

func ptr[T any](v T) *T {
	return &v
}

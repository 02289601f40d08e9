package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCostBreakdown(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		wantFee   string
		wantGST   string
		wantTotal string
	}{
		{name: "round amount", base: "1000", wantFee: "50", wantGST: "189", wantTotal: "1239"},
		{name: "zero", base: "0", wantFee: "0", wantGST: "0", wantTotal: "0"},
		{name: "fee rounds half up", base: "150", wantFee: "8", wantGST: "28", wantTotal: "186"},
		{name: "single premium seat", base: "200", wantFee: "10", wantGST: "38", wantTotal: "248"},
		{name: "ten vip seats", base: "3000", wantFee: "150", wantGST: "567", wantTotal: "3717"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCostBreakdown(decimal.RequireFromString(tt.base))

			assert.True(t, got.BaseAmount.Equal(decimal.RequireFromString(tt.base)), "base = %s", got.BaseAmount)
			assert.True(t, got.ConvenienceFee.Equal(decimal.RequireFromString(tt.wantFee)), "fee = %s", got.ConvenienceFee)
			assert.True(t, got.GST.Equal(decimal.RequireFromString(tt.wantGST)), "gst = %s", got.GST)
			assert.True(t, got.Total.Equal(decimal.RequireFromString(tt.wantTotal)), "total = %s", got.Total)
		})
	}
}

func TestCalculateCostBreakdownIsDeterministic(t *testing.T) {
	base := decimal.NewFromInt(1000)
	first := CalculateCostBreakdown(base)

	for range 100 {
		next := CalculateCostBreakdown(base)
		require.True(t, first.Total.Equal(next.Total))
		require.True(t, first.GST.Equal(next.GST))
		require.True(t, first.ConvenienceFee.Equal(next.ConvenienceFee))
	}
}

func TestNewBookingDraft(t *testing.T) {
	showAt := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
	showtime := Showtime{
		ID:           "st-1",
		Screen:       "Screen 2",
		ShowDateTime: showAt,
		Movie:        Movie{ID: "m-1", Title: "Dune", PosterUrl: "https://img/dune.jpg"},
		Theater:      Theater{ID: "t-1", Name: "Cinex", Location: "Kadikoy"},
	}

	seats := []Seat{
		{ID: "s-b2", Row: "B", Number: 2, Price: decimal.NewFromInt(150)},
		{ID: "s-a10", Row: "A", Number: 10, Price: decimal.NewFromInt(150)},
		{ID: "s-a9", Row: "A", Number: 9, Price: decimal.NewFromInt(150)},
		{ID: "s-f1", Row: "F", Number: 1, Price: decimal.NewFromInt(300)},
	}

	got := NewBookingDraft(showtime, seats)

	want := BookingDraft{
		ShowtimeID:      "st-1",
		ShowDateTime:    showAt,
		MovieID:         "m-1",
		MovieTitle:      "Dune",
		MoviePosterUrl:  "https://img/dune.jpg",
		TheaterID:       "t-1",
		TheaterName:     "Cinex",
		TheaterLocation: "Kadikoy",
		Screen:          "Screen 2",
		SeatIDs:         []string{"s-a9", "s-a10", "s-b2", "s-f1"},
		Seats:           []string{"A9", "A10", "B2", "F1"},
		TotalAmount:     decimal.NewFromInt(750),
	}

	diff := cmp.Diff(want, got, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }))
	assert.Empty(t, diff, "draft mismatch (-want +got):\n%s", diff)

	assert.Equal(t, "s-b2", seats[0].ID, "input order must not change")
}

func TestNewBookingConfirmation(t *testing.T) {
	draft := BookingDraft{
		Seats:       []string{"A1", "A2"},
		MovieTitle:  "Dune",
		TheaterName: "Cinex",
	}

	t.Run("falls back to draft seats", func(t *testing.T) {
		got := NewBookingConfirmation(Booking{ID: "b-1", TicketNumber: "TKT-1"}, draft, decimal.NewFromInt(372))

		assert.Equal(t, []string{"A1", "A2"}, got.Seats)
		assert.Equal(t, "b-1", got.BookingID)
		assert.Equal(t, "Dune", got.MovieTitle)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(372)))
	})

	t.Run("prefers backend seats", func(t *testing.T) {
		got := NewBookingConfirmation(Booking{ID: "b-1", Seats: []string{"A1"}}, draft, decimal.Zero)

		assert.Equal(t, []string{"A1"}, got.Seats)
	})
}

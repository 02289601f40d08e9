package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/shopspring/decimal"
)

type moviePayload struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Genre     []string `json:"genre"`
	Language  string   `json:"language"`
	Duration  int      `json:"duration"`
	PosterUrl string   `json:"posterUrl"`
}

type theaterPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type showtimePayload struct {
	ID             string          `json:"id"`
	MovieID        string          `json:"movieId"`
	TheaterID      string          `json:"theaterId"`
	Screen         string          `json:"screen"`
	ShowDateTime   localDateTime   `json:"showDateTime"`
	TicketPrice    decimal.Decimal `json:"ticketPrice"`
	TotalSeats     int             `json:"totalSeats"`
	AvailableSeats int             `json:"availableSeats"`
	Status         string          `json:"status"`
	Movie          *moviePayload   `json:"movie"`
	Theater        *theaterPayload `json:"theater"`
}

func (p showtimePayload) toDomain() *domain.Showtime {
	showtime := &domain.Showtime{
		ID:             p.ID,
		MovieID:        p.MovieID,
		TheaterID:      p.TheaterID,
		Screen:         p.Screen,
		ShowDateTime:   p.ShowDateTime.Time,
		TicketPrice:    p.TicketPrice,
		TotalSeats:     p.TotalSeats,
		AvailableSeats: p.AvailableSeats,
		Status:         p.Status,
	}

	if p.Movie != nil {
		showtime.Movie = domain.Movie{
			ID:        p.Movie.ID,
			Title:     p.Movie.Title,
			Genre:     p.Movie.Genre,
			Language:  p.Movie.Language,
			Duration:  p.Movie.Duration,
			PosterUrl: p.Movie.PosterUrl,
		}
	}
	if showtime.Movie.ID == "" {
		showtime.Movie.ID = p.MovieID
	}

	if p.Theater != nil {
		showtime.Theater = domain.Theater{
			ID:       p.Theater.ID,
			Name:     p.Theater.Name,
			Location: p.Theater.Location,
		}
	}
	if showtime.Theater.ID == "" {
		showtime.Theater.ID = p.TheaterID
	}

	return showtime
}

func (c *Client) GetShowtime(ctx context.Context, showtimeID string) (*domain.Showtime, error) {
	id, err := pathParam("showtimeId", showtimeID)
	if err != nil {
		return nil, err
	}

	var payload showtimePayload

	err = c.do(ctx, http.MethodGet, "/showtimes/"+id, nil, &payload)
	if err != nil {
		var apiErr *APIError
		// The backend reports a missing showtime as a runtime error.
		if errors.Is(err, domain.ErrRecordNotFound) ||
			(errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", domain.ErrShowtimeNotFound, showtimeID)
		}
		return nil, err
	}

	if payload.ID == "" {
		return nil, fmt.Errorf("%w: showtime without id", ErrInvalidResponse)
	}

	return payload.toDomain(), nil
}

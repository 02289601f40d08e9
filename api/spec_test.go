package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)

	paths := []string{
		"/healthcheck",
		"/showtimes/{showtimeId}/seat-map",
		"/showtimes/{showtimeId}/seat-map/seats/{seatId}/toggle",
		"/showtimes/{showtimeId}/seat-map/hold/extend",
		"/showtimes/{showtimeId}/seat-map/events",
		"/showtimes/{showtimeId}/seat-map/proceed",
		"/booking/draft",
		"/booking/checkout",
		"/booking/confirmation",
	}

	for _, path := range paths {
		assert.NotNil(t, doc.Paths.Find(path), "missing path %s", path)
	}
}

package integration_test

import "time"

const (
	cacheImageName = "redis:7"

	showtimeID      = "S1"
	otherSessionID  = "session_other"
	seatMapURL      = "/showtimes/" + showtimeID + "/seat-map"
	bookingDraftURL = "/booking/draft"
	checkoutURL     = "/booking/checkout"
	confirmationURL = "/booking/confirmation"

	validCheckoutBody = `{
		"customerName": "Ada Lovelace",
		"customerEmail": "ada@example.com",
		"customerPhone": "9876543210",
		"paymentMethod": "card"
	}`
)

var showDateTime = time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

func toggleURL(seatID string) string {
	return seatMapURL + "/seats/" + seatID + "/toggle"
}

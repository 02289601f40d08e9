package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/metinatakli/movie-seat-selection/internal/domain"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the booking backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("booking backend returned %d", e.StatusCode)
	}

	return fmt.Sprintf("booking backend returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrRecordNotFound
	}

	return nil
}

// IsConflict reports whether the backend refused the request because of the
// current state of a seat.
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusConflict
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Message
		apiErr.Code = body.Error
	}

	return apiErr
}

package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-seat-selection/api"
	"github.com/metinatakli/movie-seat-selection/internal/backend"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
	appvalidator "github.com/metinatakli/movie-seat-selection/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrFailedValidation   = "One or more fields are invalid"
	ErrBookingBackendDown = "The booking service is currently unavailable, please try again"
	ErrSeatDataMalformed  = "The booking service returned invalid seat data"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri, "request_id", middleware.GetReqID(r.Context()))
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) unprocessableEntityResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

// badGatewayResponse reports a failure of the booking backend. The backend's
// own message is logged, not returned.
func (app *Application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := ErrBookingBackendDown
	if errors.Is(err, domain.ErrMalformedSeatData) || errors.Is(err, backend.ErrInvalidResponse) {
		message = ErrSeatDataMalformed
	}

	app.errorResponse(w, r, http.StatusBadGateway, message)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, 0, len(validationErrors)),
	}

	for _, fieldErr := range validationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		})
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// seatErrorResponse maps seat selection and checkout errors to responses.
func (app *Application) seatErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, domain.ErrShowtimeNotFound),
		errors.Is(err, domain.ErrSeatNotFound),
		errors.Is(err, domain.ErrScreenNotFound),
		errors.Is(err, domain.ErrScreenClosed),
		errors.Is(err, domain.ErrDraftNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		app.notFoundResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrSeatUnavailable):
		app.editConflictResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrSelectionLimit):
		app.unprocessableEntityResponse(w, r, fmt.Errorf("%w (%d)", err, app.screens.MaxSeats()))
	case errors.Is(err, domain.ErrEmptySelection):
		app.unprocessableEntityResponse(w, r, err)
	case errors.Is(err, domain.ErrMalformedSeatData),
		errors.Is(err, backend.ErrInvalidResponse),
		errors.Is(err, backend.ErrUnavailable),
		errors.As(err, &apiErr):
		app.badGatewayResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/metinatakli/movie-seat-selection/api"
	"github.com/metinatakli/movie-seat-selection/internal/backend"
	"github.com/metinatakli/movie-seat-selection/internal/domain"
	"github.com/metinatakli/movie-seat-selection/internal/selection"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ensureBookingSession resolves the seat session id of the cookie session,
// creating one on first use, and puts it into the request context.
func (app *Application) ensureBookingSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := selection.EnsureSessionID(r.Context(), app.sessionManager)

		r = app.contextSetBookingSession(r, domain.BookingSession{ID: id})

		next.ServeHTTP(w, r)
	})
}

// loadBookingSession is the read-only variant of ensureBookingSession for
// routes served outside LoadAndSave. Requests without a seat session get 404.
func (app *Application) loadBookingSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(app.sessionManager.Cookie.Name)
		if err != nil {
			app.notFoundResponseWithErr(w, r, domain.ErrScreenNotFound)
			return
		}

		ctx, err := app.sessionManager.Load(r.Context(), cookie.Value)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		id := app.sessionManager.GetString(ctx, selection.SessionKeySeatSession)
		if id == "" {
			app.notFoundResponseWithErr(w, r, domain.ErrScreenNotFound)
			return
		}

		r = app.contextSetBookingSession(r.WithContext(ctx), domain.BookingSession{ID: id})

		next.ServeHTTP(w, r)
	})
}

// forwardAuthorization passes the caller's bearer token on to the booking
// backend.
func (app *Application) forwardAuthorization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if ok && token != "" {
			r = r.WithContext(backend.ContextWithToken(r.Context(), token))
		}

		next.ServeHTTP(w, r)
	})
}

func newOpenAPIRouter() (routers.Router, error) {
	doc, err := api.GetSwagger()
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}

	// Match on paths only, whatever host the service runs behind.
	doc.Servers = nil

	return legacy.NewRouter(doc)
}

// validateRequest checks path parameters and request bodies against the
// OpenAPI document. Requests for undocumented routes pass through to the
// router's own 404 and 405 handling.
func (app *Application) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := app.openapi.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}

		err = openapi3filter.ValidateRequest(r.Context(), input)
		if err != nil {
			app.badRequestResponse(w, r, requestValidationError(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestValidationError(err error) error {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return errors.New("request is invalid")
	}

	reason := reqErr.Reason
	if reason == "" && reqErr.Err != nil {
		reason = reqErr.Err.Error()
	}

	switch {
	case reqErr.Parameter != nil:
		return fmt.Errorf("invalid %s parameter %q: %s", reqErr.Parameter.In, reqErr.Parameter.Name, reason)
	case reqErr.RequestBody != nil:
		return fmt.Errorf("invalid request body: %s", reason)
	default:
		return fmt.Errorf("invalid request: %s", reason)
	}
}

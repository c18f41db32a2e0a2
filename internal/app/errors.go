package app

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/cinefilo/booking-flow/api"
	"github.com/cinefilo/booking-flow/internal/booking"
	"github.com/cinefilo/booking-flow/internal/domain"
	appvalidator "github.com/cinefilo/booking-flow/internal/validator"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrUpstreamDown   = "The ticketing service is temporarily unavailable, please try again"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
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
	message := "The requested resource not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) badGatewayResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusBadGateway, ErrUpstreamDown)
}

// stepConflictResponse covers transitions applied at the wrong step, the
// usual symptom of a client whose view of the flow has gone stale.
func (app *Application) stepConflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

// seatConflictResponse reports a stale selection after the session was
// already moved back to seat selection.
func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, takenSeats []string, step booking.Step) {
	resp := api.ConflictResponse{
		Message:    "Some of the selected seats are no longer available",
		TakenSeats: takenSeats,
		Step:       step.String(),
		RequestId:  middleware.GetReqID(r.Context()),
		Timestamp:  time.Now(),
	}

	err := app.writeJSON(w, http.StatusConflict, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErrs validator.ValidationErrors
		upstreamErrs   *domain.ValidationError
	)

	resp := api.ValidationErrorResponse{
		Message:   "One or more fields failed validation",
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	switch {
	case errors.As(err, &validationErrs):
		for _, vErr := range validationErrs {
			resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
				Field: vErr.Field(),
				Issue: appvalidator.ValidationMessage(vErr),
			})
		}
	case errors.As(err, &upstreamErrs):
		fields := make([]string, 0, len(upstreamErrs.Fields))
		for field := range upstreamErrs.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		for _, field := range fields {
			for _, issue := range upstreamErrs.Fields[field] {
				resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
					Field: field,
					Issue: issue,
				})
			}
		}
	default:
		app.badRequestResponse(w, r, err)
		return
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

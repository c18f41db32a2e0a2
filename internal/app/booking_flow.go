package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cinefilo/booking-flow/api"
	"github.com/cinefilo/booking-flow/internal/booking"
	"github.com/cinefilo/booking-flow/internal/domain"
)

func (app *Application) CreateBookingSessionHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token := app.sessionManager.Token(r.Context())

	if _, release, ok := app.flows.Acquire(token); ok {
		release()
		logger.Warn("booking session creation rejected: one already exists for this visitor")
		app.errorResponse(w, r, http.StatusConflict, "A booking session already exists, abandon it before starting a new one")
		return
	}

	showtime, err := app.showtimes.GetShowtime(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShowtimeNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrUpstreamFailure):
			app.badGatewayResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if !showtime.Active {
		logger.Warn("booking session creation rejected: showtime is not active", "showtime_id", showtimeID)
		app.notFoundResponse(w, r)
		return
	}

	session, err := booking.NewSession(showtime)
	if err != nil {
		// The upstream sent seat data we cannot make sense of.
		app.badGatewayResponse(w, r, err)
		return
	}

	app.flows.Put(token, session)

	err = app.writeJSON(w, http.StatusCreated, toBookingSessionResponse(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	defer release()

	err := app.writeJSON(w, http.StatusOK, toBookingSessionResponse(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteBookingSessionHandler(w http.ResponseWriter, r *http.Request) {
	_, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	release()

	app.flows.Delete(app.sessionManager.Token(r.Context()))

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) SetQuantityHandler(w http.ResponseWriter, r *http.Request) {
	var input api.QuantityRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	session, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	defer release()

	err = session.SetQuantity(input.Quantity)
	if err != nil {
		var transitionErr *booking.TransitionError

		switch {
		case errors.As(err, &transitionErr):
			app.stepConflictResponse(w, r, err)
		case errors.Is(err, domain.ErrNoSeatsAvailable):
			app.errorResponse(w, r, http.StatusConflict, "No seats are available for this showtime")
		case errors.Is(err, booking.ErrQuantityOutOfRange):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingSessionResponse(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// SelectSeatsHandler replaces the working selection with the requested
// seat set and advances the flow to customer info. Individual toggling
// stays client-side; the flow only ever sees the final set.
func (app *Application) SelectSeatsHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.SeatSelectionRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	session, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	defer release()

	if session.Step() != booking.StepSeats {
		app.stepConflictResponse(w, r, &booking.TransitionError{Step: session.Step(), Event: "select seats"})
		return
	}

	want := make(map[string]bool, len(input.SeatIds))
	for _, id := range input.SeatIds {
		want[id] = true
	}

	quantity := session.Draft().Quantity
	if len(want) != quantity {
		app.badRequestResponse(w, r, fmt.Errorf("exactly %d distinct seats must be selected", quantity))
		return
	}

	// Deselect first so capacity frees up for the new picks.
	for _, id := range session.SelectedSeats() {
		if !want[id] {
			session.ToggleSeat(id)
		}
	}

	kept := make(map[string]bool, quantity)
	for _, id := range session.SelectedSeats() {
		kept[id] = true
	}

	var rejected []string
	for _, id := range input.SeatIds {
		if kept[id] {
			continue
		}

		changed, err := session.ToggleSeat(id)
		if err != nil {
			app.stepConflictResponse(w, r, err)
			return
		}
		if !changed {
			rejected = append(rejected, id)
		}
	}

	if len(rejected) > 0 {
		logger.Warn("seat selection rejected: seats unknown or unavailable", "seat_ids", rejected)
		app.seatConflictResponse(w, r, rejected, session.Step())
		return
	}

	err = session.ConfirmSeats()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingSessionResponse(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) SetCustomerInfoHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CustomerInfoRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	session, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	defer release()

	err = session.SetCustomerInfo(domain.CustomerInfo{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Comments: input.Comments,
	})
	if err != nil {
		var transitionErr *booking.TransitionError

		if errors.As(err, &transitionErr) {
			app.stepConflictResponse(w, r, err)
			return
		}

		app.badRequestResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingSessionResponse(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// SubmitPaymentHandler finishes the flow. Availability is reconciled
// against the upstream immediately before submission; a conflict at
// either point moves the session back to seat selection instead of
// failing the whole flow.
func (app *Application) SubmitPaymentHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.PaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	session, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	defer release()

	if session.Step() != booking.StepPayment {
		app.stepConflictResponse(w, r, &booking.TransitionError{Step: session.Step(), Event: "submit payment"})
		return
	}

	reconciler := booking.NewAvailabilityReconciler(app.showtimes)

	_, err = reconciler.CheckAvailability(r.Context(), session.Showtime().ID)
	if err != nil {
		// A failed check blocks submission; it never passes as "still free".
		switch {
		case errors.Is(err, domain.ErrShowtimeNotFound):
			app.notFoundResponse(w, r)
		default:
			app.badGatewayResponse(w, r, err)
		}
		return
	}

	taken, err := reconciler.UnavailableSeats(session.SelectedSeats())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(taken) > 0 {
		logger.Warn("seat conflict detected before submission", "taken_seats", taken)
		app.returnToSeats(w, r, session, reconciler.Snapshot(), taken)
		return
	}

	submitter := booking.NewReservationSubmitter(app.bookings)

	created, err := submitter.Submit(r.Context(), session, domain.PaymentMethod(input.PaymentMethod))
	if err != nil {
		switch booking.ClassifyOutcome(err) {
		case booking.OutcomeSeatConflict:
			// Someone else won the race between our check and the submit.
			logger.Warn("seat conflict reported by upstream on submission")
			app.remediateSubmitConflict(w, r, session)
		case booking.OutcomeValidationFailed:
			app.failedValidationResponse(w, r, err)
		case booking.OutcomeShowtimeGone:
			app.notFoundResponse(w, r)
		default:
			app.badGatewayResponse(w, r, err)
		}
		return
	}

	showtime := session.Showtime()
	app.background(func() {
		app.sendBookingConfirmation(showtime, created)
	})

	app.flows.Delete(app.sessionManager.Token(r.Context()))

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(created), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) BackHandler(w http.ResponseWriter, r *http.Request) {
	session, release, ok := app.acquireFlow(w, r)
	if !ok {
		return
	}
	defer release()

	abandoned := session.Back()
	if abandoned {
		app.flows.Delete(app.sessionManager.Token(r.Context()))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	err := app.writeJSON(w, http.StatusOK, toBookingSessionResponse(session), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.showtimes.GetShowtime(r.Context(), showtimeID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrShowtimeNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrUpstreamFailure):
			app.badGatewayResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	seatMap, err := domain.ParseSeatMap(showtime.Seats)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	resp := api.SeatMapResponse{
		ShowtimeId:     showtime.ID,
		CinemaName:     showtime.Room.Cinema.Name,
		RoomName:       showtime.Room.Name,
		AvailableSeats: seatMap.AvailableCount(),
		SeatRows:       toSeatRows(seatMap.Rows()),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingHandler(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		app.badRequestResponse(w, r, fmt.Errorf("booking reference is required"))
		return
	}

	found, err := app.bookings.GetBooking(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrUpstreamFailure):
			app.badGatewayResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(found), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// acquireFlow looks up the caller's flow, verifies it belongs to the
// showtime in the URL, and returns it with the transition lock held.
func (app *Application) acquireFlow(w http.ResponseWriter, r *http.Request) (*booking.Session, func(), bool) {
	showtimeID, err := app.readShowtimeID(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, nil, false
	}

	token := app.sessionManager.Token(r.Context())

	session, release, ok := app.flows.Acquire(token)
	if !ok {
		app.notFoundResponse(w, r)
		return nil, nil, false
	}

	if session.Showtime().ID != showtimeID {
		release()
		app.notFoundResponse(w, r)
		return nil, nil, false
	}

	return session, release, true
}

// returnToSeats applies the conflict remediation: the session drops back
// to seat selection on the fresh snapshot and the client gets the taken
// seats so it can explain what changed.
func (app *Application) returnToSeats(
	w http.ResponseWriter,
	r *http.Request,
	session *booking.Session,
	snapshot domain.SeatSnapshot,
	taken []string) {

	err := session.ReturnToSeats(snapshot)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.seatConflictResponse(w, r, taken, session.Step())
}

func (app *Application) remediateSubmitConflict(w http.ResponseWriter, r *http.Request, session *booking.Session) {
	snapshot, err := app.showtimes.GetSeatAvailability(r.Context(), session.Showtime().ID)
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	var taken []string
	for _, id := range session.SelectedSeats() {
		if !snapshot[id] {
			taken = append(taken, id)
		}
	}

	app.returnToSeats(w, r, session, snapshot, taken)
}

func (app *Application) sendBookingConfirmation(showtime *domain.Showtime, created *domain.Booking) {
	data := map[string]any{
		"Name":        created.Customer.Name,
		"Reference":   created.Reference,
		"MovieTitle":  showtime.Movie.Title,
		"CinemaName":  showtime.Room.Cinema.Name,
		"RoomName":    showtime.Room.Name,
		"ShowDate":    showtime.ShowDate.Format("Monday, 2 January 2006"),
		"ShowTime":    showtime.ShowTime,
		"Seats":       strings.Join(created.Seats, ", "),
		"TotalAmount": created.TotalAmount.StringFixed(2),
	}

	err := app.mailer.Send(created.Customer.Email, "booking_confirmation.tmpl", data)
	if err != nil {
		app.logger.Error("failed to send booking confirmation email", "booking_reference", created.Reference, "error", err)
	}
}

func toBookingSessionResponse(session *booking.Session) api.BookingSessionResponse {
	showtime := session.Showtime()
	draft := session.Draft()
	policy := session.Policy()

	resp := api.BookingSessionResponse{
		Step:           session.Step().String(),
		Showtime:       toShowtimeSummary(showtime),
		MinQuantity:    policy.Min(),
		MaxQuantity:    policy.Max(),
		Quantity:       draft.Quantity,
		SelectedSeats:  session.SelectedSeats(),
		TotalAmount:    session.TotalAmount(),
		AvailableSeats: session.SeatMap().AvailableCount(),
	}

	if draft.Customer != nil {
		resp.Customer = &api.CustomerInfo{
			Name:     draft.Customer.Name,
			Email:    draft.Customer.Email,
			Phone:    draft.Customer.Phone,
			Comments: draft.Customer.Comments,
		}
	}

	return resp
}

func toShowtimeSummary(showtime *domain.Showtime) api.ShowtimeSummary {
	return api.ShowtimeSummary{
		Id:          showtime.ID,
		MovieTitle:  showtime.Movie.Title,
		Genre:       showtime.Movie.Genre,
		AgeRating:   showtime.Movie.AgeRating,
		CinemaName:  showtime.Room.Cinema.Name,
		RoomName:    showtime.Room.Name,
		ShowDate:    showtime.ShowDate.Format("2006-01-02"),
		ShowTime:    showtime.ShowTime,
		TicketPrice: showtime.TicketPrice,
	}
}

func toBookingResponse(created *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Reference:   created.Reference,
		ShowtimeId:  created.ShowtimeID,
		Seats:       created.Seats,
		TicketCount: created.TicketCount,
		TotalAmount: created.TotalAmount,
		Customer: api.CustomerInfo{
			Name:     created.Customer.Name,
			Email:    created.Customer.Email,
			Phone:    created.Customer.Phone,
			Comments: created.Customer.Comments,
		},
		PaymentStatus:    string(created.PaymentStatus),
		PaymentMethod:    string(created.PaymentMethod),
		PaymentReference: created.PaymentReference,
		CreatedAt:        created.CreatedAt,
	}
}

func toSeatRows(rows []domain.SeatRow) []api.SeatRow {
	seatRows := make([]api.SeatRow, len(rows))

	for i, row := range rows {
		seats := make([]api.Seat, len(row.Seats))
		for j, seat := range row.Seats {
			seats[j] = api.Seat{
				Id:        seat.ID,
				Row:       seat.Row,
				Number:    seat.Number,
				Available: seat.Available,
			}
		}

		seatRows[i] = api.SeatRow{Row: row.Row, Seats: seats}
	}

	return seatRows
}

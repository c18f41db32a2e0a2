package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinefilo/booking-flow/internal/domain"
)

// Outcome classifies a submission result so the caller can pick the
// right remediation: correct inline, return to seat selection, or retry.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeValidationFailed
	OutcomeSeatConflict
	OutcomeShowtimeGone
	OutcomeTransient
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeSeatConflict:
		return "seat_conflict"
	case OutcomeShowtimeGone:
		return "showtime_gone"
	case OutcomeTransient:
		return "transient"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// ReservationSubmitter converts a session that has reached the Payment
// step into a single atomic creation request.
type ReservationSubmitter struct {
	gateway domain.BookingGateway
}

func NewReservationSubmitter(gateway domain.BookingGateway) *ReservationSubmitter {
	return &ReservationSubmitter{gateway: gateway}
}

// Submit issues the creation call and, on success, transitions the
// session to Confirmed. On any failure the session and its draft are
// left untouched, so the caller can classify the error and remediate
// without losing collected state. The draft's idempotency key rides on
// every attempt, so a retry of the same draft cannot double-book.
func (rs *ReservationSubmitter) Submit(
	ctx context.Context,
	session *Session,
	method domain.PaymentMethod) (*domain.Booking, error) {

	if session.Step() != StepPayment {
		return nil, &TransitionError{Step: session.Step(), Event: "submit reservation"}
	}

	draft := session.Draft()

	req := domain.BookingRequest{
		ShowtimeID:     draft.ShowtimeID,
		Seats:          draft.SelectedSeats,
		TicketCount:    len(draft.SelectedSeats),
		Customer:       *draft.Customer,
		PaymentMethod:  method,
		IdempotencyKey: draft.IdempotencyKey,
	}

	booking, err := rs.gateway.CreateBooking(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := session.Confirm(booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// ClassifyOutcome maps a submission error to its outcome class.
// Classification is structural, never based on message text.
func ClassifyOutcome(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}

	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrSeatConflict):
		return OutcomeSeatConflict
	case errors.Is(err, domain.ErrShowtimeNotFound):
		return OutcomeShowtimeGone
	case errors.As(err, &validationErr):
		return OutcomeValidationFailed
	default:
		return OutcomeTransient
	}
}

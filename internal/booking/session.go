package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cinefilo/booking-flow/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Step is the position of a booking session in the flow. Steps form a
// strict linear chain; each transition validates only the output of the
// immediately preceding step.
type Step int

const (
	StepQuantity Step = iota
	StepSeats
	StepCustomerInfo
	StepPayment
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepQuantity:
		return "quantity"
	case StepSeats:
		return "seats"
	case StepCustomerInfo:
		return "customer"
	case StepPayment:
		return "payment"
	case StepConfirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// TransitionError reports an event applied in a step that does not
// accept it.
type TransitionError struct {
	Step  Step
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s during the %s step", e.Event, e.Step)
}

var (
	ErrQuantityOutOfRange  = errors.New("ticket quantity outside the legal range")
	ErrSelectionIncomplete = errors.New("seat selection is incomplete")
	ErrNameRequired        = errors.New("customer name is required")
	ErrEmailInvalid        = errors.New("customer email is missing or malformed")
)

var emailShapeRgx = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Session is the step-sequencing state machine for one reservation
// attempt. It owns the BookingDraft and the seat map snapshot taken
// when the flow was entered. Sessions are not safe for concurrent use;
// the caller serializes transitions, one pending at a time.
type Session struct {
	showtime  *domain.Showtime
	seatMap   *domain.SeatMap
	policy    QuantityPolicy
	selection *SeatSelectionSet
	step      Step
	draft     domain.BookingDraft
	booking   *domain.Booking
}

// NewSession enters the flow for a showtime. The seat snapshot is
// parsed once here and reused for the whole interactive selection; it
// is never mutated locally to reflect in-progress picks.
func NewSession(showtime *domain.Showtime) (*Session, error) {
	seatMap, err := domain.ParseSeatMap(showtime.Seats)
	if err != nil {
		return nil, err
	}

	policy := NewQuantityPolicy(seatMap.AvailableCount())

	return &Session{
		showtime: showtime,
		seatMap:  seatMap,
		policy:   policy,
		step:     StepQuantity,
		draft: domain.BookingDraft{
			ShowtimeID:     showtime.ID,
			Quantity:       policy.Clamp(1),
			IdempotencyKey: uuid.NewString(),
		},
	}, nil
}

func (s *Session) Step() Step {
	return s.step
}

func (s *Session) Showtime() *domain.Showtime {
	return s.showtime
}

func (s *Session) SeatMap() *domain.SeatMap {
	return s.seatMap
}

func (s *Session) Policy() QuantityPolicy {
	return s.policy
}

// Draft returns a copy of the accumulated draft state.
func (s *Session) Draft() domain.BookingDraft {
	draft := s.draft

	if s.draft.SelectedSeats != nil {
		draft.SelectedSeats = make([]string, len(s.draft.SelectedSeats))
		copy(draft.SelectedSeats, s.draft.SelectedSeats)
	}
	if s.draft.Customer != nil {
		customer := *s.draft.Customer
		draft.Customer = &customer
	}

	return draft
}

// SelectedSeats returns the current working selection, lexicographically
// ordered, regardless of step.
func (s *Session) SelectedSeats() []string {
	if s.selection == nil {
		return nil
	}

	return s.selection.Selected()
}

// Booking returns the confirmed booking, or nil before confirmation.
func (s *Session) Booking() *domain.Booking {
	return s.booking
}

// TotalAmount is ticket price times the draft quantity.
func (s *Session) TotalAmount() decimal.Decimal {
	return s.showtime.TicketPrice.Mul(decimal.NewFromInt(int64(s.draft.Quantity)))
}

// SetQuantity records the ticket quantity and advances to seat
// selection. A selection carried over from an earlier pass through this
// step is preserved when it still fits the new quantity.
func (s *Session) SetQuantity(quantity int) error {
	if s.step != StepQuantity {
		return &TransitionError{Step: s.step, Event: "set quantity"}
	}

	if s.policy.Empty() {
		return domain.ErrNoSeatsAvailable
	}

	if !s.policy.Allows(quantity) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrQuantityOutOfRange, quantity, s.policy.Min(), s.policy.Max())
	}

	s.draft.Quantity = quantity
	s.rebuildSelection(quantity)
	s.step = StepSeats

	return nil
}

func (s *Session) rebuildSelection(quantity int) {
	previous := s.SelectedSeats()

	s.selection = NewSeatSelectionSet(s.seatMap, quantity)
	for _, id := range previous {
		s.selection.Toggle(id)
	}
}

// ToggleSeat flips a seat in the working selection and reports whether
// the selection changed.
func (s *Session) ToggleSeat(seatID string) (bool, error) {
	if s.step != StepSeats {
		return false, &TransitionError{Step: s.step, Event: "toggle seat"}
	}

	return s.selection.Toggle(seatID), nil
}

// ConfirmSeats requires a complete selection and advances to customer
// info, emitting the chosen seat ids into the draft.
func (s *Session) ConfirmSeats() error {
	if s.step != StepSeats {
		return &TransitionError{Step: s.step, Event: "confirm seats"}
	}

	if !s.selection.IsComplete() {
		return fmt.Errorf("%w: %d of %d seats selected", ErrSelectionIncomplete, s.selection.Size(), s.selection.Quantity())
	}

	s.draft.SelectedSeats = s.selection.Selected()
	s.step = StepCustomerInfo

	return nil
}

// SetCustomerInfo validates name and email shape and advances to
// payment. Phone and comments are unconstrained.
func (s *Session) SetCustomerInfo(info domain.CustomerInfo) error {
	if s.step != StepCustomerInfo {
		return &TransitionError{Step: s.step, Event: "set customer info"}
	}

	if strings.TrimSpace(info.Name) == "" {
		return ErrNameRequired
	}
	if !emailShapeRgx.MatchString(info.Email) {
		return ErrEmailInvalid
	}

	s.draft.Customer = &info
	s.step = StepPayment

	return nil
}

// Back moves one step backwards without discarding any collected draft
// data. It reports whether the flow was abandoned, which happens when
// backing out of the Quantity step. Back is a no-op once confirmed.
func (s *Session) Back() bool {
	switch s.step {
	case StepQuantity:
		return true
	case StepSeats:
		s.step = StepQuantity
	case StepCustomerInfo:
		s.step = StepSeats
	case StepPayment:
		s.step = StepCustomerInfo
	}

	return false
}

// Confirm records the created booking and moves the session to its
// terminal state.
func (s *Session) Confirm(booking *domain.Booking) error {
	if s.step != StepPayment {
		return &TransitionError{Step: s.step, Event: "confirm booking"}
	}

	s.booking = booking
	s.step = StepConfirmed

	return nil
}

// ReturnToSeats is the seat-conflict remediation path: the session
// drops back from Payment to Seats using a fresh availability snapshot.
// The seat map and quantity policy are rebuilt, the draft quantity is
// clamped to the new availability, and previously selected seats that
// are still free are kept.
func (s *Session) ReturnToSeats(snapshot domain.SeatSnapshot) error {
	if s.step != StepPayment {
		return &TransitionError{Step: s.step, Event: "return to seat selection"}
	}

	seatMap, err := domain.ParseSeatMap(snapshot)
	if err != nil {
		return err
	}

	s.seatMap = seatMap
	s.policy = NewQuantityPolicy(seatMap.AvailableCount())
	s.draft.Quantity = s.policy.Clamp(s.draft.Quantity)
	s.rebuildSelection(s.draft.Quantity)
	s.draft.SelectedSeats = s.selection.Selected()
	s.step = StepSeats

	return nil
}

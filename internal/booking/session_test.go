package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/cinefilo/booking-flow/internal/domain"
)

func newTestShowtime(seats domain.SeatSnapshot) *domain.Showtime {
	return &domain.Showtime{
		ID: 42,
		Movie: domain.MovieInfo{
			ID:    7,
			Title: "The Long Goodbye",
		},
		Room: domain.Room{
			ID:   3,
			Name: "Room 1",
			Cinema: domain.Cinema{
				ID:   1,
				Name: "Downtown Cinema",
			},
		},
		ShowDate:    time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		ShowTime:    "19:30",
		TicketPrice: decimal.NewFromInt(150),
		Active:      true,
		Seats:       seats,
	}
}

func mustSession(t *testing.T, seats domain.SeatSnapshot) *Session {
	t.Helper()

	session, err := NewSession(newTestShowtime(seats))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return session
}

// advanceToPayment walks a fresh session to the payment step with the
// given seats selected.
func advanceToPayment(t *testing.T, session *Session, seatIDs ...string) {
	t.Helper()

	if err := session.SetQuantity(len(seatIDs)); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	for _, id := range seatIDs {
		if _, err := session.ToggleSeat(id); err != nil {
			t.Fatalf("ToggleSeat(%s): %v", id, err)
		}
	}
	if err := session.ConfirmSeats(); err != nil {
		t.Fatalf("ConfirmSeats: %v", err)
	}
	err := session.SetCustomerInfo(domain.CustomerInfo{
		Name:  "Maria Petrova",
		Email: "maria@example.com",
	})
	if err != nil {
		t.Fatalf("SetCustomerInfo: %v", err)
	}
}

func TestSessionHappyPath(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"C6": true, "C7": true, "C8": true, "D1": false,
	})

	if session.Step() != StepQuantity {
		t.Fatalf("initial step = %v, want %v", session.Step(), StepQuantity)
	}
	if session.Draft().Quantity != 1 {
		t.Errorf("initial quantity = %d, want 1", session.Draft().Quantity)
	}
	if session.Draft().IdempotencyKey == "" {
		t.Error("a new draft must carry an idempotency key")
	}

	if err := session.SetQuantity(2); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if session.Step() != StepSeats {
		t.Fatalf("step after quantity = %v, want %v", session.Step(), StepSeats)
	}

	for _, id := range []string{"C7", "C6"} {
		changed, err := session.ToggleSeat(id)
		if err != nil || !changed {
			t.Fatalf("ToggleSeat(%s) = (%v, %v)", id, changed, err)
		}
	}

	if err := session.ConfirmSeats(); err != nil {
		t.Fatalf("ConfirmSeats: %v", err)
	}
	if diff := cmp.Diff([]string{"C6", "C7"}, session.Draft().SelectedSeats); diff != "" {
		t.Errorf("draft seats mismatch (-want +got):\n%s", diff)
	}

	err := session.SetCustomerInfo(domain.CustomerInfo{Name: "Maria Petrova", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("SetCustomerInfo: %v", err)
	}
	if session.Step() != StepPayment {
		t.Fatalf("step after customer info = %v, want %v", session.Step(), StepPayment)
	}

	if want := decimal.NewFromInt(300); !session.TotalAmount().Equal(want) {
		t.Errorf("TotalAmount() = %s, want %s", session.TotalAmount(), want)
	}

	created := &domain.Booking{Reference: "ref-1"}
	if err := session.Confirm(created); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if session.Step() != StepConfirmed {
		t.Errorf("step after confirm = %v, want %v", session.Step(), StepConfirmed)
	}
	if session.Booking() != created {
		t.Error("Booking() should return the confirmed booking")
	}
}

func TestSessionQuantityValidation(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": true, "A2": true, "A3": true,
	})

	err := session.SetQuantity(4)
	if !errors.Is(err, ErrQuantityOutOfRange) {
		t.Errorf("SetQuantity(4) error = %v, want ErrQuantityOutOfRange", err)
	}

	err = session.SetQuantity(0)
	if !errors.Is(err, ErrQuantityOutOfRange) {
		t.Errorf("SetQuantity(0) error = %v, want ErrQuantityOutOfRange", err)
	}

	if session.Step() != StepQuantity {
		t.Errorf("failed transitions must not advance the step, got %v", session.Step())
	}
}

func TestSessionQuantityCapsAtTen(t *testing.T) {
	seats := make(domain.SeatSnapshot)
	for _, row := range []string{"A", "B", "C"} {
		for n := 1; n <= 5; n++ {
			seats[row+string(rune('0'+n))] = true
		}
	}

	session := mustSession(t, seats)

	if got := session.Policy().Max(); got != MaxTicketsPerBooking {
		t.Fatalf("policy max = %d, want %d", got, MaxTicketsPerBooking)
	}

	err := session.SetQuantity(11)
	if !errors.Is(err, ErrQuantityOutOfRange) {
		t.Errorf("SetQuantity(11) error = %v, want ErrQuantityOutOfRange", err)
	}
	if err := session.SetQuantity(10); err != nil {
		t.Errorf("SetQuantity(10) unexpected error: %v", err)
	}
}

func TestSessionWithNoAvailableSeats(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": false, "A2": false,
	})

	if !session.Policy().Empty() {
		t.Fatal("policy should be empty when every seat is taken")
	}
	if session.Draft().Quantity != 0 {
		t.Errorf("initial quantity = %d, want 0", session.Draft().Quantity)
	}

	err := session.SetQuantity(1)
	if !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Errorf("SetQuantity error = %v, want ErrNoSeatsAvailable", err)
	}
}

func TestSessionBackPreservesDraft(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": true, "A2": true, "A3": true,
	})
	advanceToPayment(t, session, "A1", "A2")

	// Payment -> customer -> seats, nothing collected is lost.
	if abandoned := session.Back(); abandoned {
		t.Fatal("backing out of payment should not abandon the flow")
	}
	if session.Step() != StepCustomerInfo {
		t.Fatalf("step = %v, want %v", session.Step(), StepCustomerInfo)
	}

	session.Back()
	if session.Step() != StepSeats {
		t.Fatalf("step = %v, want %v", session.Step(), StepSeats)
	}

	draft := session.Draft()
	if draft.Customer == nil || draft.Customer.Name != "Maria Petrova" {
		t.Error("customer info should survive back navigation")
	}
	if diff := cmp.Diff([]string{"A1", "A2"}, session.SelectedSeats()); diff != "" {
		t.Errorf("selection lost on back navigation (-want +got):\n%s", diff)
	}

	session.Back()
	if session.Step() != StepQuantity {
		t.Fatalf("step = %v, want %v", session.Step(), StepQuantity)
	}

	if abandoned := session.Back(); !abandoned {
		t.Error("backing out of the quantity step should abandon the flow")
	}
}

func TestSessionReducingQuantityTrimsSelection(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": true, "A2": true, "A3": true,
	})

	if err := session.SetQuantity(3); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	for _, id := range []string{"A1", "A2", "A3"} {
		session.ToggleSeat(id)
	}

	session.Back()
	if err := session.SetQuantity(2); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	if got := len(session.SelectedSeats()); got != 2 {
		t.Errorf("selection size after shrinking quantity = %d, want 2", got)
	}
}

func TestSessionRoundTripKeepsData(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": true, "A2": true,
	})
	advanceToPayment(t, session, "A1", "A2")

	before := session.Draft()

	// All the way back to seats and forward again.
	session.Back()
	session.Back()
	if err := session.ConfirmSeats(); err != nil {
		t.Fatalf("ConfirmSeats after round trip: %v", err)
	}
	err := session.SetCustomerInfo(*before.Customer)
	if err != nil {
		t.Fatalf("SetCustomerInfo after round trip: %v", err)
	}

	after := session.Draft()

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("draft changed across a back-and-forward round trip (-before +after):\n%s", diff)
	}
}

func TestSessionCustomerValidation(t *testing.T) {
	tests := []struct {
		name    string
		info    domain.CustomerInfo
		wantErr error
	}{
		{
			name:    "should reject blank name",
			info:    domain.CustomerInfo{Name: "   ", Email: "maria@example.com"},
			wantErr: ErrNameRequired,
		},
		{
			name:    "should reject missing email",
			info:    domain.CustomerInfo{Name: "Maria"},
			wantErr: ErrEmailInvalid,
		},
		{
			name:    "should reject email without domain",
			info:    domain.CustomerInfo{Name: "Maria", Email: "maria@nowhere"},
			wantErr: ErrEmailInvalid,
		},
		{
			name: "should accept optional fields left blank",
			info: domain.CustomerInfo{Name: "Maria", Email: "maria@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := mustSession(t, domain.SeatSnapshot{"A1": true})

			if err := session.SetQuantity(1); err != nil {
				t.Fatalf("SetQuantity: %v", err)
			}
			session.ToggleSeat("A1")
			if err := session.ConfirmSeats(); err != nil {
				t.Fatalf("ConfirmSeats: %v", err)
			}

			err := session.SetCustomerInfo(tt.info)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionRejectsOutOfStepTransitions(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{"A1": true, "A2": true})

	var transitionErr *TransitionError

	if _, err := session.ToggleSeat("A1"); !errors.As(err, &transitionErr) {
		t.Errorf("ToggleSeat at quantity step: error = %v, want TransitionError", err)
	}
	if err := session.ConfirmSeats(); !errors.As(err, &transitionErr) {
		t.Errorf("ConfirmSeats at quantity step: error = %v, want TransitionError", err)
	}
	if err := session.SetCustomerInfo(domain.CustomerInfo{}); !errors.As(err, &transitionErr) {
		t.Errorf("SetCustomerInfo at quantity step: error = %v, want TransitionError", err)
	}
	if err := session.Confirm(&domain.Booking{}); !errors.As(err, &transitionErr) {
		t.Errorf("Confirm at quantity step: error = %v, want TransitionError", err)
	}

	if err := session.SetQuantity(1); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if err := session.SetQuantity(1); !errors.As(err, &transitionErr) {
		t.Errorf("SetQuantity at seats step: error = %v, want TransitionError", err)
	}
}

func TestSessionConfirmSeatsRequiresFullSelection(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{"A1": true, "A2": true})

	if err := session.SetQuantity(2); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	session.ToggleSeat("A1")

	err := session.ConfirmSeats()
	if !errors.Is(err, ErrSelectionIncomplete) {
		t.Errorf("error = %v, want ErrSelectionIncomplete", err)
	}
}

func TestSessionReturnToSeats(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": true, "A2": true, "A3": true,
	})
	advanceToPayment(t, session, "A1", "A2")

	// A2 was grabbed by someone else; A1 is still free.
	err := session.ReturnToSeats(domain.SeatSnapshot{
		"A1": true, "A2": false, "A3": true,
	})
	if err != nil {
		t.Fatalf("ReturnToSeats: %v", err)
	}

	if session.Step() != StepSeats {
		t.Fatalf("step = %v, want %v", session.Step(), StepSeats)
	}
	if diff := cmp.Diff([]string{"A1"}, session.SelectedSeats()); diff != "" {
		t.Errorf("still-available seats should survive (-want +got):\n%s", diff)
	}
	if session.Draft().Quantity != 2 {
		t.Errorf("quantity = %d, want 2", session.Draft().Quantity)
	}

	// Customer info is sibling data and must survive the drop back.
	if session.Draft().Customer == nil {
		t.Error("customer info lost on return to seats")
	}
}

func TestSessionReturnToSeatsClampsQuantity(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{
		"A1": true, "A2": true, "A3": true,
	})
	advanceToPayment(t, session, "A1", "A2", "A3")

	err := session.ReturnToSeats(domain.SeatSnapshot{
		"A1": true, "A2": false, "A3": false,
	})
	if err != nil {
		t.Fatalf("ReturnToSeats: %v", err)
	}

	if session.Draft().Quantity != 1 {
		t.Errorf("quantity = %d, want 1 after availability dropped", session.Draft().Quantity)
	}
	if session.Policy().Max() != 1 {
		t.Errorf("policy max = %d, want 1", session.Policy().Max())
	}
}

func TestSessionReturnToSeatsOnlyFromPayment(t *testing.T) {
	session := mustSession(t, domain.SeatSnapshot{"A1": true})

	var transitionErr *TransitionError

	err := session.ReturnToSeats(domain.SeatSnapshot{"A1": true})
	if !errors.As(err, &transitionErr) {
		t.Errorf("error = %v, want TransitionError", err)
	}
}

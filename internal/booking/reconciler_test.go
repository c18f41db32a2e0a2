package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cinefilo/booking-flow/internal/domain"
	"github.com/cinefilo/booking-flow/internal/mocks"
)

func TestReconcilerRequiresAFetchFirst(t *testing.T) {
	reconciler := NewAvailabilityReconciler(&mocks.MockShowtimeGateway{})

	_, err := reconciler.AreSeatsAvailable([]string{"A1"})
	if !errors.Is(err, ErrAvailabilityNotChecked) {
		t.Errorf("AreSeatsAvailable error = %v, want ErrAvailabilityNotChecked", err)
	}

	_, err = reconciler.UnavailableSeats([]string{"A1"})
	if !errors.Is(err, ErrAvailabilityNotChecked) {
		t.Errorf("UnavailableSeats error = %v, want ErrAvailabilityNotChecked", err)
	}

	if reconciler.Snapshot() != nil {
		t.Error("Snapshot() should be nil before the first fetch")
	}
}

func TestReconcilerCheckAvailability(t *testing.T) {
	gateway := &mocks.MockShowtimeGateway{
		GetSeatAvailabilityFunc: func(ctx context.Context, showtimeID int) (domain.SeatSnapshot, error) {
			return domain.SeatSnapshot{
				"B2": true,
				"A1": true,
				"A2": false,
			}, nil
		},
	}

	reconciler := NewAvailabilityReconciler(gateway)

	available, err := reconciler.CheckAvailability(context.Background(), 42)
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}

	if diff := cmp.Diff([]string{"A1", "B2"}, available); diff != "" {
		t.Errorf("available seats mismatch (-want +got):\n%s", diff)
	}

	ok, err := reconciler.AreSeatsAvailable([]string{"A1", "B2"})
	if err != nil || !ok {
		t.Errorf("AreSeatsAvailable(free seats) = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = reconciler.AreSeatsAvailable([]string{"A1", "A2"})
	if err != nil || ok {
		t.Errorf("AreSeatsAvailable(taken seat) = (%v, %v), want (false, nil)", ok, err)
	}

	taken, err := reconciler.UnavailableSeats([]string{"B2", "A2", "Z9"})
	if err != nil {
		t.Fatalf("UnavailableSeats: %v", err)
	}
	if diff := cmp.Diff([]string{"A2", "Z9"}, taken); diff != "" {
		t.Errorf("taken seats mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcilerFetchFailureBlocksChecks(t *testing.T) {
	calls := 0
	gateway := &mocks.MockShowtimeGateway{
		GetSeatAvailabilityFunc: func(ctx context.Context, showtimeID int) (domain.SeatSnapshot, error) {
			calls++
			if calls > 1 {
				return nil, fmt.Errorf("upstream blew up")
			}
			return domain.SeatSnapshot{"A1": true}, nil
		},
	}

	reconciler := NewAvailabilityReconciler(gateway)

	if _, err := reconciler.CheckAvailability(context.Background(), 42); err != nil {
		t.Fatalf("first CheckAvailability: %v", err)
	}

	// The second fetch fails; the earlier result must not leak through.
	if _, err := reconciler.CheckAvailability(context.Background(), 42); err == nil {
		t.Fatal("second CheckAvailability should fail")
	}

	_, err := reconciler.AreSeatsAvailable([]string{"A1"})
	if !errors.Is(err, ErrAvailabilityNotChecked) {
		t.Errorf("stale result leaked after failed fetch: %v", err)
	}
	if reconciler.Snapshot() != nil {
		t.Error("Snapshot() should be nil after a failed fetch")
	}
}

func TestReconcilerRejectsMalformedUpstreamData(t *testing.T) {
	gateway := &mocks.MockShowtimeGateway{
		GetSeatAvailabilityFunc: func(ctx context.Context, showtimeID int) (domain.SeatSnapshot, error) {
			return domain.SeatSnapshot{"not-a-seat": true}, nil
		},
	}

	reconciler := NewAvailabilityReconciler(gateway)

	_, err := reconciler.CheckAvailability(context.Background(), 42)
	if !errors.Is(err, domain.ErrMalformedSeatID) {
		t.Errorf("error = %v, want ErrMalformedSeatID", err)
	}
}

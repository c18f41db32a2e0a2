package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cinefilo/booking-flow/internal/domain"
)

// ErrAvailabilityNotChecked is returned when a membership check is
// attempted before a successful availability fetch. A failed fetch must
// never be read as "all seats available" or "all seats taken".
var ErrAvailabilityNotChecked = errors.New("seat availability has not been fetched")

// AvailabilityReconciler re-fetches the authoritative seat map for a
// showtime and checks a candidate selection against it. The interactive
// selection step deliberately works off a point-in-time snapshot;
// reconciliation is the one boundary where staleness is surfaced.
type AvailabilityReconciler struct {
	gateway   domain.ShowtimeGateway
	snapshot  domain.SeatSnapshot
	available map[string]bool
}

func NewAvailabilityReconciler(gateway domain.ShowtimeGateway) *AvailabilityReconciler {
	return &AvailabilityReconciler{gateway: gateway}
}

// CheckAvailability fetches a fresh snapshot and returns the currently
// available seat ids, sorted. A fetch or parse failure leaves any
// previous result discarded so a stale answer cannot leak through.
func (r *AvailabilityReconciler) CheckAvailability(ctx context.Context, showtimeID int) ([]string, error) {
	r.available = nil
	r.snapshot = nil

	snapshot, err := r.gateway.GetSeatAvailability(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("fetching seat availability for showtime %d: %w", showtimeID, err)
	}

	seatMap, err := domain.ParseSeatMap(snapshot)
	if err != nil {
		return nil, fmt.Errorf("parsing seat availability for showtime %d: %w", showtimeID, err)
	}

	available := make(map[string]bool)
	for _, id := range seatMap.AvailableIDs() {
		available[id] = true
	}

	r.available = available
	r.snapshot = snapshot

	ids := seatMap.AvailableIDs()
	sort.Strings(ids)

	return ids, nil
}

// Snapshot returns the last successfully fetched seat snapshot, or nil
// before the first fetch.
func (r *AvailabilityReconciler) Snapshot() domain.SeatSnapshot {
	return r.snapshot
}

// AreSeatsAvailable reports whether every candidate seat is a member of
// the most recently fetched available set.
func (r *AvailabilityReconciler) AreSeatsAvailable(candidateSeats []string) (bool, error) {
	if r.available == nil {
		return false, ErrAvailabilityNotChecked
	}

	for _, id := range candidateSeats {
		if !r.available[id] {
			return false, nil
		}
	}

	return true, nil
}

// UnavailableSeats returns the candidates missing from the last fetched
// available set, sorted, for conflict reporting and remediation.
func (r *AvailabilityReconciler) UnavailableSeats(candidateSeats []string) ([]string, error) {
	if r.available == nil {
		return nil, ErrAvailabilityNotChecked
	}

	var taken []string
	for _, id := range candidateSeats {
		if !r.available[id] {
			taken = append(taken, id)
		}
	}
	sort.Strings(taken)

	return taken, nil
}

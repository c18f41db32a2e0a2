package booking

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cinefilo/booking-flow/internal/domain"
)

func mustSeatMap(t *testing.T, snapshot domain.SeatSnapshot) *domain.SeatMap {
	t.Helper()

	seatMap, err := domain.ParseSeatMap(snapshot)
	if err != nil {
		t.Fatalf("failed to parse seat map: %v", err)
	}

	return seatMap
}

func TestSeatSelectionToggle(t *testing.T) {
	seatMap := mustSeatMap(t, domain.SeatSnapshot{
		"A1": true,
		"A2": true,
		"A3": false,
	})

	selection := NewSeatSelectionSet(seatMap, 2)

	if !selection.Toggle("A1") {
		t.Fatal("toggling an available seat should change the set")
	}
	if !selection.Contains("A1") {
		t.Error("A1 should be selected after toggle")
	}

	if !selection.Toggle("A1") {
		t.Fatal("toggling a selected seat should deselect it")
	}
	if selection.Contains("A1") {
		t.Error("A1 should be deselected after second toggle")
	}
}

func TestSeatSelectionIgnoresUnavailableAndUnknownSeats(t *testing.T) {
	seatMap := mustSeatMap(t, domain.SeatSnapshot{
		"A1": true,
		"A2": false,
	})

	selection := NewSeatSelectionSet(seatMap, 2)

	if selection.Toggle("A2") {
		t.Error("toggling an unavailable seat should be a no-op")
	}
	if selection.Toggle("Z9") {
		t.Error("toggling an unknown seat should be a no-op")
	}
	if selection.Size() != 0 {
		t.Errorf("Size() = %d, want 0", selection.Size())
	}
}

func TestSeatSelectionCapsAtQuantity(t *testing.T) {
	seatMap := mustSeatMap(t, domain.SeatSnapshot{
		"A1": true,
		"A2": true,
		"A3": true,
	})

	selection := NewSeatSelectionSet(seatMap, 2)

	selection.Toggle("A1")
	selection.Toggle("A2")

	if selection.Toggle("A3") {
		t.Error("adding beyond the quantity should be rejected")
	}
	if selection.Size() != 2 {
		t.Errorf("Size() = %d, want 2", selection.Size())
	}

	// Removal is always permitted, even at capacity.
	if !selection.Toggle("A1") {
		t.Error("deselecting at capacity should be permitted")
	}
	if !selection.Toggle("A3") {
		t.Error("adding should work again after a removal freed a slot")
	}
}

func TestSeatSelectionCompleteness(t *testing.T) {
	seatMap := mustSeatMap(t, domain.SeatSnapshot{
		"A1": true,
		"A2": true,
	})

	selection := NewSeatSelectionSet(seatMap, 2)

	if selection.IsComplete() {
		t.Error("empty selection should not be complete")
	}

	selection.Toggle("A1")
	if selection.IsComplete() {
		t.Error("partial selection should not be complete")
	}

	selection.Toggle("A2")
	if !selection.IsComplete() {
		t.Error("selection holding the full quantity should be complete")
	}
}

func TestSeatSelectionSelectedIsSorted(t *testing.T) {
	seatMap := mustSeatMap(t, domain.SeatSnapshot{
		"B2": true,
		"A1": true,
		"C3": true,
	})

	selection := NewSeatSelectionSet(seatMap, 3)

	selection.Toggle("C3")
	selection.Toggle("A1")
	selection.Toggle("B2")

	want := []string{"A1", "B2", "C3"}
	if diff := cmp.Diff(want, selection.Selected()); diff != "" {
		t.Errorf("Selected() mismatch (-want +got):\n%s", diff)
	}
}

func TestSeatSelectionRemove(t *testing.T) {
	seatMap := mustSeatMap(t, domain.SeatSnapshot{
		"A1": true,
	})

	selection := NewSeatSelectionSet(seatMap, 1)
	selection.Toggle("A1")

	selection.Remove("A1")
	if selection.Contains("A1") {
		t.Error("A1 should be gone after Remove")
	}

	// Removing an absent seat is harmless.
	selection.Remove("Z9")
}

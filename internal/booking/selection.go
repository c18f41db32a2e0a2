package booking

import (
	"sort"

	"github.com/cinefilo/booking-flow/internal/domain"
)

// SeatSelectionSet holds the working set of chosen seat ids during
// interactive picking and enforces the "exactly N available seats"
// rule. Membership is checked against the seat map snapshot the set was
// built with; staleness is resolved later, at the reconciliation point,
// never mid-selection.
type SeatSelectionSet struct {
	quantity int
	seatMap  *domain.SeatMap
	selected map[string]struct{}
}

func NewSeatSelectionSet(seatMap *domain.SeatMap, quantity int) *SeatSelectionSet {
	return &SeatSelectionSet{
		quantity: quantity,
		seatMap:  seatMap,
		selected: make(map[string]struct{}),
	}
}

// Toggle flips the selection state of a seat and reports whether the
// set changed. Unavailable or unknown seats are ignored. Removing an
// already-selected seat is always permitted; adding is rejected once
// the set holds the full quantity.
func (s *SeatSelectionSet) Toggle(seatID string) bool {
	if !s.seatMap.IsAvailable(seatID) {
		return false
	}

	if _, ok := s.selected[seatID]; ok {
		delete(s.selected, seatID)
		return true
	}

	if len(s.selected) >= s.quantity {
		return false
	}

	s.selected[seatID] = struct{}{}

	return true
}

func (s *SeatSelectionSet) Contains(seatID string) bool {
	_, ok := s.selected[seatID]
	return ok
}

func (s *SeatSelectionSet) Size() int {
	return len(s.selected)
}

func (s *SeatSelectionSet) Quantity() int {
	return s.quantity
}

func (s *SeatSelectionSet) IsComplete() bool {
	return len(s.selected) == s.quantity
}

// Selected returns the chosen seat ids ordered lexicographically. The
// set itself is unordered; ordering is applied at read time for display
// and for the creation request.
func (s *SeatSelectionSet) Selected() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// Remove drops a seat from the set regardless of availability. Used
// when reconciliation reports a seat as taken.
func (s *SeatSelectionSet) Remove(seatID string) {
	delete(s.selected, seatID)
}

// Package booking implements the ticket reservation workflow: the
// quantity policy, the seat selection rules, the step state machine,
// and the submission protocol against the upstream ticketing API.
package booking

// MaxTicketsPerBooking is the policy ceiling on tickets in one booking,
// independent of live availability.
const MaxTicketsPerBooking = 10

// QuantityPolicy is the legal ticket-count range for a showtime. The
// range is empty when no seats are available.
type QuantityPolicy struct {
	min int
	max int
}

func NewQuantityPolicy(availableSeats int) QuantityPolicy {
	if availableSeats <= 0 {
		return QuantityPolicy{}
	}

	max := availableSeats
	if max > MaxTicketsPerBooking {
		max = MaxTicketsPerBooking
	}

	return QuantityPolicy{min: 1, max: max}
}

func (p QuantityPolicy) Min() int {
	return p.min
}

func (p QuantityPolicy) Max() int {
	return p.max
}

// Empty reports whether no quantity is legal, i.e. booking is disallowed.
func (p QuantityPolicy) Empty() bool {
	return p.max == 0
}

func (p QuantityPolicy) Allows(quantity int) bool {
	return !p.Empty() && quantity >= p.min && quantity <= p.max
}

// Clamp pulls a quantity back into the legal range. It runs on every
// availability change, not only on first load, so a selection made
// before availability dropped never survives as an invalid state.
func (p QuantityPolicy) Clamp(quantity int) int {
	if p.Empty() {
		return 0
	}
	if quantity < p.min {
		return p.min
	}
	if quantity > p.max {
		return p.max
	}

	return quantity
}

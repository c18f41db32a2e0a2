package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrMalformedSeatID  = errors.New("malformed seat id")
	ErrSeatConflict     = errors.New("one or more selected seats are no longer available")
	ErrNoSeatsAvailable = errors.New("no seats available for this showtime")
	ErrUpstreamFailure  = errors.New("upstream ticketing service unavailable")
)

// ValidationError carries field-level problems reported by the upstream
// API so they can be surfaced inline next to the offending field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

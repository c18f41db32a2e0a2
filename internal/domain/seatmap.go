package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// SeatRecord is one physical seat. Row and Number are derived from the
// seat id and never stored independently of it.
type SeatRecord struct {
	ID        string
	Row       string
	Number    int
	Available bool
}

type SeatRow struct {
	Row   string
	Seats []SeatRecord
}

// SeatMap is the ordered view of a showtime's seat snapshot: rows sorted
// lexicographically, seats within a row sorted numerically.
type SeatMap struct {
	seats []SeatRecord
	rows  []SeatRow
	byID  map[string]SeatRecord
}

// ParseSeatMap builds a SeatMap from a snapshot. Parsing is pure and
// deterministic: the same snapshot always yields the same ordering. A
// seat id that does not match the <letter><digits> shape is an error,
// never silently dropped.
func ParseSeatMap(snapshot SeatSnapshot) (*SeatMap, error) {
	seats := make([]SeatRecord, 0, len(snapshot))

	for id, available := range snapshot {
		row, number, err := ParseSeatID(id)
		if err != nil {
			return nil, err
		}

		seats = append(seats, SeatRecord{
			ID:        id,
			Row:       row,
			Number:    number,
			Available: available,
		})
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row == seats[j].Row {
			return seats[i].Number < seats[j].Number
		}
		return seats[i].Row < seats[j].Row
	})

	byID := make(map[string]SeatRecord, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	return &SeatMap{
		seats: seats,
		rows:  groupByRow(seats),
		byID:  byID,
	}, nil
}

// groupByRow runs over pre-sorted seats in a single pass, so rows come
// out in row order without additional sorting.
func groupByRow(seats []SeatRecord) []SeatRow {
	if len(seats) == 0 {
		return nil
	}

	var rows []SeatRow
	currentRow := SeatRow{Row: seats[0].Row}

	for _, seat := range seats {
		if seat.Row != currentRow.Row {
			rows = append(rows, currentRow)
			currentRow = SeatRow{Row: seat.Row}
		}

		currentRow.Seats = append(currentRow.Seats, seat)
	}

	rows = append(rows, currentRow)

	return rows
}

// ParseSeatID splits a seat id into its row letter and seat number.
// The id must be one uppercase letter followed by one or more digits.
func ParseSeatID(id string) (string, int, error) {
	if len(id) < 2 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedSeatID, id)
	}

	row := id[0]
	if row < 'A' || row > 'Z' {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedSeatID, id)
	}

	for _, ch := range id[1:] {
		if ch < '0' || ch > '9' {
			return "", 0, fmt.Errorf("%w: %q", ErrMalformedSeatID, id)
		}
	}

	number, err := strconv.Atoi(id[1:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedSeatID, id)
	}

	return string(row), number, nil
}

// ValidSeatID reports whether id matches the <letter><digits> shape.
func ValidSeatID(id string) bool {
	_, _, err := ParseSeatID(id)
	return err == nil
}

func (m *SeatMap) Seats() []SeatRecord {
	return m.seats
}

func (m *SeatMap) Rows() []SeatRow {
	return m.rows
}

func (m *SeatMap) Count() int {
	return len(m.seats)
}

func (m *SeatMap) AvailableCount() int {
	count := 0
	for _, seat := range m.seats {
		if seat.Available {
			count++
		}
	}

	return count
}

func (m *SeatMap) Get(id string) (SeatRecord, bool) {
	seat, ok := m.byID[id]
	return seat, ok
}

func (m *SeatMap) IsAvailable(id string) bool {
	seat, ok := m.byID[id]
	return ok && seat.Available
}

// AvailableIDs returns the ids of all available seats in map order.
func (m *SeatMap) AvailableIDs() []string {
	var ids []string
	for _, seat := range m.seats {
		if seat.Available {
			ids = append(ids, seat.ID)
		}
	}

	return ids
}

// Package api holds the request and response types of the booking-flow
// HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Seat struct {
	Id        string `json:"id"`
	Row       string `json:"row"`
	Number    int    `json:"number"`
	Available bool   `json:"available"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId     int       `json:"showtimeId"`
	CinemaName     string    `json:"cinemaName"`
	RoomName       string    `json:"roomName"`
	AvailableSeats int       `json:"availableSeats"`
	SeatRows       []SeatRow `json:"seatRows"`
}

type ShowtimeSummary struct {
	Id          int             `json:"id"`
	MovieTitle  string          `json:"movieTitle"`
	Genre       string          `json:"genre,omitempty"`
	AgeRating   string          `json:"ageRating,omitempty"`
	CinemaName  string          `json:"cinemaName"`
	RoomName    string          `json:"roomName"`
	ShowDate    string          `json:"showDate"`
	ShowTime    string          `json:"showTime"`
	TicketPrice decimal.Decimal `json:"ticketPrice"`
}

type CustomerInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// BookingSessionResponse is the full view of an active flow: the current
// step plus every piece of draft data collected so far, so a client can
// render any step without re-prompting for earlier ones.
type BookingSessionResponse struct {
	Step           string          `json:"step"`
	Showtime       ShowtimeSummary `json:"showtime"`
	MinQuantity    int             `json:"minQuantity"`
	MaxQuantity    int             `json:"maxQuantity"`
	Quantity       int             `json:"quantity"`
	SelectedSeats  []string        `json:"selectedSeats"`
	Customer       *CustomerInfo   `json:"customer,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	AvailableSeats int             `json:"availableSeats"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type SeatSelectionRequest struct {
	SeatIds []string `json:"seatIds" validate:"required,min=1,dive,seat_id"`
}

type CustomerInfoRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=20"`
	Comments string `json:"comments" validate:"max=500"`
}

type PaymentRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=credit_card debit_card ewallet bank_transfer"`
}

type BookingResponse struct {
	Reference        string          `json:"reference"`
	ShowtimeId       int             `json:"showtimeId"`
	Seats            []string        `json:"seats"`
	TicketCount      int             `json:"ticketCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Customer         CustomerInfo    `json:"customer"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentReference string          `json:"paymentReference"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ConflictResponse is returned when a selection went stale: the session
// has been moved back to seat selection and these seats were dropped.
type ConflictResponse struct {
	Message    string    `json:"message"`
	TakenSeats []string  `json:"takenSeats"`
	Step       string    `json:"step"`
	RequestId  string    `json:"requestId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type MovieSummary struct {
	Id          int    `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre,omitempty"`
	AgeRating   string `json:"ageRating,omitempty"`
	PosterUrl   string `json:"posterUrl,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

type MovieListResponse struct {
	Movies []MovieSummary `json:"movies"`
}

type CinemaSummary struct {
	Id       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Rooms    int    `json:"rooms"`
}

type CinemaListResponse struct {
	Cinemas []CinemaSummary `json:"cinemas"`
}

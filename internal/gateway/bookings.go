package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinefilo/booking-flow/internal/domain"
	"github.com/shopspring/decimal"
)

type createBookingPayload struct {
	Showtime         int      `json:"showtime"`
	CustomerName     string   `json:"customer_name"`
	CustomerEmail    string   `json:"customer_email"`
	CustomerPhone    string   `json:"customer_phone,omitempty"`
	CustomerComments string   `json:"customer_comments,omitempty"`
	Seats            []string `json:"seats"`
	NumberOfTickets  int      `json:"number_of_tickets"`
	PaymentMethod    string   `json:"payment_method"`
}

type bookingPayload struct {
	BookingReference string          `json:"booking_reference"`
	Showtime         int             `json:"showtime"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	CustomerPhone    string          `json:"customer_phone"`
	CustomerComments string          `json:"customer_comments"`
	Seats            []string        `json:"seats"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	NumberOfTickets  int             `json:"number_of_tickets"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentReference string          `json:"payment_reference"`
	PaymentMethod    string          `json:"payment_method"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CreateBooking issues the single atomic creation request. The
// idempotency key rides in a header so a retried draft cannot create a
// second booking upstream.
func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	payload := createBookingPayload{
		Showtime:         req.ShowtimeID,
		CustomerName:     req.Customer.Name,
		CustomerEmail:    req.Customer.Email,
		CustomerPhone:    req.Customer.Phone,
		CustomerComments: req.Customer.Comments,
		Seats:            req.Seats,
		NumberOfTickets:  req.TicketCount,
		PaymentMethod:    string(req.PaymentMethod),
	}

	headers := map[string]string{"Idempotency-Key": req.IdempotencyKey}

	var resp bookingPayload
	if err := c.do(ctx, http.MethodPost, "/bookings/", headers, payload, &resp); err != nil {
		return nil, err
	}

	return toBooking(resp), nil
}

func (c *Client) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	var resp bookingPayload

	path := fmt.Sprintf("/bookings/%s/", reference)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		if errors.Is(err, domain.ErrShowtimeNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	return toBooking(resp), nil
}

func toBooking(payload bookingPayload) *domain.Booking {
	return &domain.Booking{
		Reference:   payload.BookingReference,
		ShowtimeID:  payload.Showtime,
		Seats:       payload.Seats,
		TicketCount: payload.NumberOfTickets,
		TotalAmount: payload.TotalAmount,
		Customer: domain.CustomerInfo{
			Name:     payload.CustomerName,
			Email:    payload.CustomerEmail,
			Phone:    payload.CustomerPhone,
			Comments: payload.CustomerComments,
		},
		PaymentStatus:    domain.PaymentStatus(payload.PaymentStatus),
		PaymentMethod:    domain.PaymentMethod(payload.PaymentMethod),
		PaymentReference: payload.PaymentReference,
		CreatedAt:        payload.CreatedAt,
	}
}

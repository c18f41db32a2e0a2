package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodEwallet      PaymentMethod = "ewallet"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type CustomerInfo struct {
	Name     string
	Email    string
	Phone    string
	Comments string
}

// BookingDraft is the accumulating state of one reservation attempt. It
// is owned by a single booking session, lives only in memory, and is
// discarded on completion or abandonment. The idempotency key is minted
// once per draft and reused on every submission retry of the same draft.
type BookingDraft struct {
	ShowtimeID     int
	Quantity       int
	SelectedSeats  []string
	Customer       *CustomerInfo
	IdempotencyKey string
}

// BookingRequest is the single atomic creation call sent upstream.
type BookingRequest struct {
	ShowtimeID     int
	Seats          []string
	TicketCount    int
	Customer       CustomerInfo
	PaymentMethod  PaymentMethod
	IdempotencyKey string
}

// Booking is a confirmed reservation. Once created it is immutable from
// this service's perspective.
type Booking struct {
	Reference        string
	ShowtimeID       int
	Seats            []string
	TicketCount      int
	TotalAmount      decimal.Decimal
	Customer         CustomerInfo
	PaymentStatus    PaymentStatus
	PaymentMethod    PaymentMethod
	PaymentReference string
	CreatedAt        time.Time
}

type BookingGateway interface {
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, reference string) (*Booking, error)
}

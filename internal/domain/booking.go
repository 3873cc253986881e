package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Rate string

const (
	RateNormal  Rate = "Normal"
	RateStudent Rate = "Étudiant"
	RateReduced Rate = "Réduit"
)

var Rates = []Rate{RateNormal, RateStudent, RateReduced}

func (r Rate) Valid() bool {
	for _, v := range Rates {
		if r == v {
			return true
		}
	}

	return false
}

type Ticket struct {
	Rate  Rate            `json:"rate"`
	Price decimal.Decimal `json:"price"`
}

type Booking struct {
	ID                uuid.UUID
	ScreeningID       uuid.UUID
	UserID            int
	Tickets           []Ticket
	Seats             []string
	PaymentStatus     bool
	CheckoutSessionID *string
	CreatedAt         time.Time
	PaidAt            *time.Time
}

// NewBooking starts an unpaid booking created at now, truncated to the
// microsecond precision Postgres stores.
func NewBooking(screeningID uuid.UUID, userID int, tickets []Ticket, seats []string, now time.Time) *Booking {
	return &Booking{
		ID:          uuid.New(),
		ScreeningID: screeningID,
		UserID:      userID,
		Tickets:     tickets,
		Seats:       seats,
		CreatedAt:   now.UTC().Truncate(time.Microsecond),
	}
}

func (b *Booking) Total() decimal.Decimal {
	total := decimal.Zero

	for _, t := range b.Tickets {
		total = total.Add(t.Price)
	}

	return total
}

// Held reports whether the booking still counts as a provisional hold at now.
// The hold covers bookings created strictly after now-window.
func (b *Booking) Held(now time.Time, window time.Duration) bool {
	return IsHeld(b.CreatedAt, now, window)
}

func IsHeld(createdAt, now time.Time, window time.Duration) bool {
	return createdAt.After(now.Add(-window))
}

// SeatClaim is the projection of a booking needed to decide seat availability.
type SeatClaim struct {
	Seats         []string
	PaymentStatus bool
	CreatedAt     time.Time
}

type BookingSummary struct {
	ID            uuid.UUID
	ScreeningID   uuid.UUID
	MovieTitle    string
	MoviePoster   string
	ScreeningDate time.Time
	Seats         []string
	PaymentStatus bool
	CreatedAt     time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetById(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetSeatClaimsByScreeningId(ctx context.Context, screeningID uuid.UUID) ([]SeatClaim, error)
	SetCheckoutSession(ctx context.Context, id uuid.UUID, checkoutSessionID string) error
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	GetSummariesByUserId(ctx context.Context, userID int, pagination Pagination) ([]BookingSummary, *Metadata, error)
}

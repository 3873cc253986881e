// Package availability decides, at read time, which seats of a screening can no
// longer be offered to a new booking.
//
// A seat is unavailable when a paid booking references it (confirmed
// occupancy, never expires) or when any booking referencing it was created
// within the hold window (provisional hold). Holds are derived from booking
// timestamps on every call: nothing is written, and a lapsed hold simply stops
// showing up on the next resolution.
package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/popcornpalace/booking-api/internal/domain"
)

// DefaultHoldWindow is how long an unpaid booking keeps its seats.
const DefaultHoldWindow = 15 * time.Minute

// ClaimStore returns every booking of a screening, paid or not, projected to
// the fields the resolver needs.
type ClaimStore interface {
	GetSeatClaimsByScreeningId(ctx context.Context, screeningID uuid.UUID) ([]domain.SeatClaim, error)
}

// Resolver computes unavailable seats. It holds no mutable state and can be
// shared between goroutines.
type Resolver struct {
	store      ClaimStore
	now        func() time.Time
	holdWindow time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHoldWindow overrides how long an unpaid booking keeps its seats.
func WithHoldWindow(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.holdWindow = d
		}
	}
}

// WithClock replaces the wall clock used as resolution time.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver returns a Resolver reading claims from store.
func NewResolver(store ClaimStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:      store,
		now:        time.Now,
		holdWindow: DefaultHoldWindow,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// HoldWindow returns the configured hold duration.
func (r *Resolver) HoldWindow() time.Duration {
	return r.holdWindow
}

// UnavailableSeats returns the seats of the screening that a new booking must
// not select. A store failure is returned as is and no partial result is
// produced; an empty slice means the screening has no blocking bookings.
func (r *Resolver) UnavailableSeats(ctx context.Context, screeningID uuid.UUID) ([]string, error) {
	claims, err := r.store.GetSeatClaimsByScreeningId(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	return Resolve(claims, r.now(), r.holdWindow), nil
}

// Resolve concatenates the seats of paid bookings with the seats of bookings
// still inside the hold window. A seat claimed by a booking that is both paid
// and recent appears twice; callers must tolerate duplicates.
func Resolve(claims []domain.SeatClaim, now time.Time, holdWindow time.Duration) []string {
	booked := make([]string, 0)
	locked := make([]string, 0)

	for _, claim := range claims {
		if claim.PaymentStatus {
			booked = append(booked, claim.Seats...)
		}

		if domain.IsHeld(claim.CreatedAt, now, holdWindow) {
			locked = append(locked, claim.Seats...)
		}
	}

	return append(booked, locked...)
}

// Conflicts returns the requested seats that are present in unavailable, in
// request order.
func Conflicts(unavailable, requested []string) []string {
	taken := make(map[string]struct{}, len(unavailable))
	for _, seat := range unavailable {
		taken[seat] = struct{}{}
	}

	var conflicts []string

	for _, seat := range requested {
		if _, ok := taken[seat]; ok {
			conflicts = append(conflicts, seat)
		}
	}

	return conflicts
}

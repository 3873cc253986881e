package message

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/popcornpalace/booking-api/internal/domain"
)

type Header struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewHeader() Header {
	return Header{
		ID:          watermill.NewUUID(),
		PublishedAt: time.Now().UTC(),
	}
}

// BookingPaid is published once, when a booking first transitions to paid.
type BookingPaid struct {
	Header Header `json:"header"`

	BookingID     uuid.UUID `json:"booking_id"`
	ScreeningID   uuid.UUID `json:"screening_id"`
	UserID        int       `json:"user_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerName  string    `json:"customer_name"`
	MovieTitle    string    `json:"movie_title"`
	ScreeningDate time.Time `json:"screening_date"`
	Seats         []string  `json:"seats"`
	Total         string    `json:"total"`
}

func NewBookingPaid(booking *domain.Booking, customer *domain.User, screening *domain.Screening) *BookingPaid {
	return &BookingPaid{
		Header:        NewHeader(),
		BookingID:     booking.ID,
		ScreeningID:   booking.ScreeningID,
		UserID:        customer.ID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.FirstName,
		MovieTitle:    screening.Movie.Title,
		ScreeningDate: screening.Date,
		Seats:         booking.Seats,
		Total:         booking.Total().StringFixed(2),
	}
}

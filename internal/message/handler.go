package message

import (
	"context"
	"fmt"

	"github.com/popcornpalace/booking-api/internal/mailer"
)

type Handler struct {
	mailer mailer.Mailer
}

func NewHandler(m mailer.Mailer) Handler {
	return Handler{mailer: m}
}

type bookingConfirmationData struct {
	FirstName     string
	MovieTitle    string
	ScreeningDate string
	Seats         []string
	Total         string
	BookingID     string
}

func (h Handler) SendBookingConfirmation(ctx context.Context, e *BookingPaid) error {
	if e.CustomerEmail == "" {
		return nil
	}

	data := bookingConfirmationData{
		FirstName:     e.CustomerName,
		MovieTitle:    e.MovieTitle,
		ScreeningDate: e.ScreeningDate.Format("02/01/2006 15:04"),
		Seats:         e.Seats,
		Total:         e.Total,
		BookingID:     e.BookingID.String(),
	}

	if err := h.mailer.Send(e.CustomerEmail, mailer.BookingConfirmationTemplate, data); err != nil {
		return fmt.Errorf("sending booking confirmation: %w", err)
	}

	return nil
}

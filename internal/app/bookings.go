package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/popcornpalace/booking-api/api"
	"github.com/popcornpalace/booking-api/internal/availability"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/popcornpalace/booking-api/internal/message"
)

// CreateBooking stores an unpaid booking. The availability check and the
// insert are not atomic: two concurrent requests may both claim a seat.
func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	screening, err := app.screeningRepo.GetById(r.Context(), input.ScreeningId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("screening not found"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	unavailable, err := app.resolver.UnavailableSeats(r.Context(), screening.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if conflicts := availability.Conflicts(unavailable, input.Seats); len(conflicts) > 0 {
		logger.Warn("booking rejected, seats unavailable", "screening_id", screening.ID, "seats", conflicts)
		app.editConflictResponseWithErr(w, r,
			fmt.Errorf("%w: %s", domain.ErrSeatUnavailable, strings.Join(conflicts, ", ")))
		return
	}

	userId := app.contextGetUserId(r)
	booking := domain.NewBooking(screening.ID, userId, toDomainTickets(input.Tickets), input.Seats, app.now())

	err = app.bookingRepo.Create(r.Context(), booking)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("screening not found"))
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.bookingCreated(r.Context())
	logger.Info("booking created", "booking_id", booking.ID, "screening_id", screening.ID, "seats", booking.Seats)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%s", booking.ID))

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(booking), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingById(w http.ResponseWriter, r *http.Request) {
	booking, ok := app.loadOwnedBooking(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	params := api.GetUserBookingsParams{}

	if page := r.URL.Query().Get("page"); page != "" {
		if pageNum, err := strconv.Atoi(page); err == nil {
			params.Page = &pageNum
		}
	}

	if pageSize := r.URL.Query().Get("pageSize"); pageSize != "" {
		if pageSizeNum, err := strconv.Atoi(pageSize); err == nil {
			params.PageSize = &pageSizeNum
		}
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	pagination := toPagination(params)

	bookings, metadata, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toBookingSummaries(bookings),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loadOwnedBooking resolves the bookingId path parameter to a booking of the
// current user. Bookings of other users are reported as not found.
func (app *Application) loadOwnedBooking(w http.ResponseWriter, r *http.Request) (*domain.Booking, bool) {
	bookingId, err := readUUIDParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return nil, false
	}

	return app.getOwnedBooking(w, r, bookingId)
}

func (app *Application) getOwnedBooking(w http.ResponseWriter, r *http.Request, bookingId uuid.UUID) (*domain.Booking, bool) {
	booking, err := app.bookingRepo.GetById(r.Context(), bookingId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return nil, false
	}

	if booking.UserID != app.contextGetUserId(r) {
		app.notFoundResponse(w, r)
		return nil, false
	}

	return booking, true
}

// markPaid records the payment and, on the first transition only, counts it
// and publishes BookingPaid. A failed publish is logged; the payment stays
// recorded.
func (app *Application) markPaid(r *http.Request, booking *domain.Booking) error {
	ctx := r.Context()
	logger := app.contextGetLogger(r)

	changed, err := app.bookingRepo.MarkPaid(ctx, booking.ID)
	if err != nil {
		return err
	}

	if !changed {
		logger.Info("booking already marked as paid", "booking_id", booking.ID)
		return nil
	}

	booking.PaymentStatus = true
	app.metrics.bookingPaid(ctx)
	logger.Info("booking paid", "booking_id", booking.ID)

	customer, err := app.userRepo.GetById(ctx, booking.UserID)
	if err != nil {
		logger.Error("failed to load customer for booking paid event", "booking_id", booking.ID, "error", err)
		return nil
	}

	screening, err := app.screeningRepo.GetById(ctx, booking.ScreeningID)
	if err != nil {
		logger.Error("failed to load screening for booking paid event", "booking_id", booking.ID, "error", err)
		return nil
	}

	err = app.eventBus.Publish(ctx, message.NewBookingPaid(booking, customer, screening))
	if err != nil {
		logger.Error("failed to publish booking paid event", "booking_id", booking.ID, "error", err)
	}

	return nil
}

func toDomainTickets(tickets []api.Ticket) []domain.Ticket {
	result := make([]domain.Ticket, len(tickets))
	for i, t := range tickets {
		result[i] = domain.Ticket{
			Rate:  domain.Rate(t.Rate),
			Price: t.Price,
		}
	}
	return result
}

func toBookingResponse(b *domain.Booking) api.BookingResponse {
	tickets := make([]api.Ticket, len(b.Tickets))
	for i, t := range b.Tickets {
		tickets[i] = api.Ticket{
			Rate:  string(t.Rate),
			Price: t.Price,
		}
	}

	return api.BookingResponse{
		Id:            b.ID,
		ScreeningId:   b.ScreeningID,
		Tickets:       tickets,
		Seats:         nonNil(b.Seats),
		Total:         b.Total().Round(2),
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
		PaidAt:        b.PaidAt,
	}
}

func toBookingSummaries(bookings []domain.BookingSummary) []api.BookingSummary {
	summaries := make([]api.BookingSummary, len(bookings))

	for i, b := range bookings {
		summaries[i] = api.BookingSummary{
			Id:            b.ID,
			ScreeningId:   b.ScreeningID,
			ScreeningDate: b.ScreeningDate,
			Movie: api.MovieSummary{
				Title:  b.MovieTitle,
				Poster: b.MoviePoster,
			},
			Seats:         nonNil(b.Seats),
			PaymentStatus: b.PaymentStatus,
			CreatedAt:     b.CreatedAt,
		}
	}

	return summaries
}

func toPagination(params api.GetUserBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     1,
		PageSize: 10,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}

	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

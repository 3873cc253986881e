// Package api holds the request and response bodies of the HTTP API and the
// OpenAPI document that describes them.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

// Auth & users

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type UserResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Screenings

type Movie struct {
	Title    string      `json:"title"`
	Director []string    `json:"director"`
	Casting  []string    `json:"casting"`
	Genres   []string    `json:"genres"`
	Synopsis string      `json:"synopsis"`
	Poster   string      `json:"poster"`
	Backdrop string      `json:"backdrop"`
	Trailer  string      `json:"trailer"`
	Score    float64     `json:"score"`
	Length   int         `json:"length"`
	Release  *types.Date `json:"release,omitempty"`
}

type ScreeningResponse struct {
	Id          uuid.UUID `json:"id"`
	Slug        string    `json:"slug"`
	Date        time.Time `json:"date"`
	Movie       Movie     `json:"movie"`
	BookedSeats []string  `json:"bookedSeats"`
}

type MovieSummary struct {
	Title  string `json:"title"`
	Poster string `json:"poster"`
}

type ScreeningSummary struct {
	Id    uuid.UUID    `json:"id"`
	Slug  string       `json:"slug"`
	Date  time.Time    `json:"date"`
	Movie MovieSummary `json:"movie"`
}

type ScreeningsResponse struct {
	Screenings []ScreeningSummary `json:"screenings"`
}

type GetScreeningsParams struct {
	Genre *string     `validate:"omitempty,max=100"`
	Date  *types.Date `validate:"omitempty"`
}

type GenresResponse struct {
	Genres []string `json:"genres"`
}

type DatesResponse struct {
	Dates []types.Date `json:"dates"`
}

type CreateScreeningRequest struct {
	MovieId int       `json:"movieId" validate:"required,gt=0"`
	Date    time.Time `json:"date" validate:"required,future"`
}

type PopulateScreeningsResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Bookings

type Ticket struct {
	Rate  string          `json:"rate" validate:"required,rate"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

type CreateBookingRequest struct {
	ScreeningId uuid.UUID `json:"screeningId" validate:"required"`
	Tickets     []Ticket  `json:"tickets" validate:"required,min=1,max=10,dive"`
	Seats       []string  `json:"seats" validate:"required,eqfield=Tickets,unique,dive,required,max=32"`
}

type BookingResponse struct {
	Id            uuid.UUID       `json:"id"`
	ScreeningId   uuid.UUID       `json:"screeningId"`
	Tickets       []Ticket        `json:"tickets"`
	Seats         []string        `json:"seats"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus bool            `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
}

type CheckoutRequest struct {
	BookingId  uuid.UUID `json:"bookingId" validate:"required"`
	SuccessUrl string    `json:"successUrl" validate:"required,url"`
	CancelUrl  string    `json:"cancelUrl" validate:"required,url"`
}

type CheckoutResponse struct {
	Url string `json:"url"`
}

type ConfirmPaymentResponse struct {
	Paid bool `json:"paid"`
}

type BookingSummary struct {
	Id            uuid.UUID    `json:"id"`
	ScreeningId   uuid.UUID    `json:"screeningId"`
	ScreeningDate time.Time    `json:"screeningDate"`
	Movie         MovieSummary `json:"movie"`
	Seats         []string     `json:"seats"`
	PaymentStatus bool         `json:"paymentStatus"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type GetUserBookingsParams struct {
	Page     *int `validate:"omitempty,gte=1,lte=10000"`
	PageSize *int `validate:"omitempty,gte=1,lte=100"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

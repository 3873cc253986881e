package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/popcornpalace/booking-api/api"
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBodyBytes = 65536

func (app *Application) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CheckoutRequest

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

	booking, ok := app.getOwnedBooking(w, r, input.BookingId)
	if !ok {
		return
	}

	if booking.PaymentStatus {
		app.editConflictResponseWithErr(w, r, domain.ErrAlreadyPaid)
		return
	}

	// Once the hold lapses the seats may already belong to someone else.
	if !booking.Held(app.now(), app.resolver.HoldWindow()) {
		logger.Warn("checkout attempted after hold expiry", "booking_id", booking.ID, "created_at", booking.CreatedAt)
		app.editConflictResponseWithErr(w, r, domain.ErrHoldExpired)
		return
	}

	customer, err := app.userRepo.GetById(r.Context(), booking.UserID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	screening, err := app.screeningRepo.GetById(r.Context(), booking.ScreeningID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(domain.CheckoutRequest{
		Booking:    booking,
		Customer:   customer,
		MovieTitle: screening.Movie.Title,
		SuccessURL: input.SuccessUrl,
		CancelURL:  input.CancelUrl,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNothingToCharge):
			app.unprocessableEntityResponse(w, r, domain.ErrNothingToCharge)
		default:
			logger.Error("failed to create checkout session", "booking_id", booking.ID, "error", err)
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.bookingRepo.SetCheckoutSession(r.Context(), booking.ID, checkoutSession.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CheckoutResponse{
		Url: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ConfirmPayment asks the payment processor whether the checkout session of
// the booking was paid, for clients coming back from the success URL before
// the webhook arrived.
func (app *Application) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	booking, ok := app.loadOwnedBooking(w, r)
	if !ok {
		return
	}

	paid := booking.PaymentStatus

	if !paid && booking.CheckoutSessionID != nil {
		var err error

		paid, err = app.paymentProvider.IsSessionPaid(*booking.CheckoutSessionID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		if paid {
			err = app.markPaid(r, booking)
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
		}
	}

	err := app.writeJSON(w, http.StatusOK, api.ConfirmPaymentResponse{Paid: paid}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhook marks bookings paid when Stripe reports a completed checkout.
// Events that cannot be matched to a booking are acknowledged so Stripe stops
// retrying them; storage failures return 500 so it retries.
func (app *Application) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("unable to read request body"))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		app.config.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn("invalid stripe webhook signature", "error", err)
		app.badRequestResponse(w, r, fmt.Errorf("invalid signature"))
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
	default:
		w.WriteHeader(http.StatusOK)
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid checkout session payload"))
		return
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		logger.Info("checkout completed without payment", "checkout_session_id", session.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	bookingId, err := uuid.Parse(session.Metadata["booking_id"])
	if err != nil {
		logger.Warn("checkout session without booking id", "checkout_session_id", session.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	booking, err := app.bookingRepo.GetById(r.Context(), bookingId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("checkout session for unknown booking", "booking_id", bookingId)
			w.WriteHeader(http.StatusOK)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.markPaid(r, booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

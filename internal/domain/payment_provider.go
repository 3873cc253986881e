package domain

import "github.com/stripe/stripe-go/v82"

type CheckoutRequest struct {
	Booking    *Booking
	Customer   *User
	MovieTitle string
	SuccessURL string
	CancelURL  string
}

type PaymentProvider interface {
	CreateCheckoutSession(req CheckoutRequest) (*stripe.CheckoutSession, error)
	IsSessionPaid(checkoutSessionID string) (bool, error)
}

package payment

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// PriceIDs maps a ticket rate to the Stripe price charged for it.
type PriceIDs map[domain.Rate]string

type StripePaymentProvider struct {
	prices PriceIDs
}

func NewStripePaymentProvider(prices PriceIDs) *StripePaymentProvider {
	return &StripePaymentProvider{
		prices: prices,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(req domain.CheckoutRequest) (*stripe.CheckoutSession, error) {
	lineItems := BuildLineItems(req.Booking.Tickets, s.prices)
	if len(lineItems) == 0 {
		return nil, domain.ErrNothingToCharge
	}

	successURL, err := SuccessURL(req.SuccessURL, req.Booking.ID.String())
	if err != nil {
		return nil, err
	}

	bookingID := req.Booking.ID.String()

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata: map[string]string{
			"booking_id":   bookingID,
			"user_id":      strconv.Itoa(req.Customer.ID),
			"movie_title":  req.MovieTitle,
			"screening_id": req.Booking.ScreeningID.String(),
		},
		CustomerEmail:     stripe.String(req.Customer.Email),
		ClientReferenceID: stripe.String(bookingID),
	}

	return session.New(params)
}

func (s *StripePaymentProvider) IsSessionPaid(checkoutSessionID string) (bool, error) {
	cs, err := session.Get(checkoutSessionID, nil)
	if err != nil {
		return false, err
	}

	return cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}

// BuildLineItems groups tickets by rate, one line item per rate in the order
// rates first appear. Rates without a configured price are left out.
func BuildLineItems(tickets []domain.Ticket, prices PriceIDs) []*stripe.CheckoutSessionLineItemParams {
	quantities := make(map[domain.Rate]int64)
	var order []domain.Rate

	for _, t := range tickets {
		if _, ok := prices[t.Rate]; !ok {
			continue
		}
		if _, seen := quantities[t.Rate]; !seen {
			order = append(order, t.Rate)
		}
		quantities[t.Rate]++
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order))
	for _, rate := range order {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(prices[rate]),
			Quantity: stripe.Int64(quantities[rate]),
		})
	}

	return lineItems
}

// SuccessURL appends the success flag and booking id to the redirect URL.
func SuccessURL(base, bookingID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid success url: %w", err)
	}

	q := u.Query()
	q.Set("success", "true")
	q.Set("bookingid", bookingID)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

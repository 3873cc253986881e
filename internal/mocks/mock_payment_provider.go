package mocks

import (
	"github.com/popcornpalace/booking-api/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreateCheckoutSession(req domain.CheckoutRequest) (*stripe.CheckoutSession, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) IsSessionPaid(checkoutSessionID string) (bool, error) {
	args := m.Called(checkoutSessionID)
	return args.Bool(0), args.Error(1)
}

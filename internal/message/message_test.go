package message

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/popcornpalace/booking-api/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent() *BookingPaid {
	return &BookingPaid{
		Header:        NewHeader(),
		BookingID:     uuid.New(),
		ScreeningID:   uuid.New(),
		UserID:        7,
		CustomerEmail: "ada@example.com",
		CustomerName:  "Ada",
		MovieTitle:    "Wicked",
		ScreeningDate: time.Date(2024, 12, 14, 19, 0, 0, 0, time.UTC),
		Seats:         []string{"A1", "A2"},
		Total:         "25.00",
	}
}

func TestSendBookingConfirmation(t *testing.T) {
	m := mailer.NewMockMailer()
	h := NewHandler(m)
	e := newTestEvent()

	err := h.SendBookingConfirmation(context.Background(), e)
	require.NoError(t, err)

	sent := m.SentEmails()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@example.com", sent[0].Recipient)
	assert.Equal(t, mailer.BookingConfirmationTemplate, sent[0].TemplateFile)

	data, ok := sent[0].Data.(bookingConfirmationData)
	require.True(t, ok)
	assert.Equal(t, "14/12/2024 19:00", data.ScreeningDate)
	assert.Equal(t, e.BookingID.String(), data.BookingID)
}

func TestSendBookingConfirmationWithoutEmail(t *testing.T) {
	m := mailer.NewMockMailer()
	e := newTestEvent()
	e.CustomerEmail = ""

	err := NewHandler(m).SendBookingConfirmation(context.Background(), e)
	require.NoError(t, err)
	assert.Empty(t, m.SentEmails())
}

func TestSendBookingConfirmationMailerFailure(t *testing.T) {
	m := mailer.NewMockMailer()
	m.Err = errors.New("smtp down")

	err := NewHandler(m).SendBookingConfirmation(context.Background(), newTestEvent())
	assert.ErrorIs(t, err, m.Err)
}

func TestRouterDeliversBookingPaid(t *testing.T) {
	logger := watermill.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger)
	m := mailer.NewMockMailer()

	router, err := NewRouter(RouterDeps{
		Logger: logger,
		Mailer: m,
		SubscriberConstructor: func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return pubSub, nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	bus, err := NewEventBus(pubSub, logger)
	require.NoError(t, err)

	e := newTestEvent()
	require.NoError(t, bus.Publish(ctx, e))

	assert.Eventually(t, func() bool {
		return len(m.SentEmails()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "ada@example.com", m.SentEmails()[0].Recipient)
}

package message

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/popcornpalace/booking-api/internal/mailer"
	"github.com/redis/go-redis/v9"
)

const consumerGroupPrefix = "booking-api."

type RouterDeps struct {
	Logger      watermill.LoggerAdapter
	RedisClient redis.UniversalClient
	Mailer      mailer.Mailer

	// SubscriberConstructor overrides the Redis stream subscriber, used in tests.
	SubscriberConstructor cqrs.EventProcessorSubscriberConstructorFn
}

func NewRouter(deps RouterDeps) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          deps.Logger,
	}.Middleware)

	subscriberConstructor := deps.SubscriberConstructor
	if subscriberConstructor == nil {
		subscriberConstructor = func(params cqrs.EventProcessorSubscriberConstructorParams) (message.Subscriber, error) {
			return redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        deps.RedisClient,
				ConsumerGroup: consumerGroupPrefix + params.HandlerName,
			}, deps.Logger)
		}
	}

	ep, err := cqrs.NewEventProcessorWithConfig(router, cqrs.EventProcessorConfig{
		SubscriberConstructor: subscriberConstructor,
		GenerateSubscribeTopic: func(params cqrs.EventProcessorGenerateSubscribeTopicParams) (string, error) {
			return params.EventName, nil
		},
		Marshaler: marshaler,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating event processor: %w", err)
	}

	h := NewHandler(deps.Mailer)

	err = ep.AddHandlers(
		cqrs.NewEventHandler("send-booking-confirmation", h.SendBookingConfirmation),
	)
	if err != nil {
		return nil, fmt.Errorf("adding handlers: %w", err)
	}

	return router, nil
}

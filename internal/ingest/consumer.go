package ingest

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	pkgerrors "github.com/sakanusa/gerai-analytics-backend/pkg/errors"
	"github.com/sakanusa/gerai-analytics-backend/pkg/logger"
)

// Consumer pulls order events off the subscription and hands them to the service.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	service      *Service
	logg         *logger.Logger
}

// NewConsumer builds the orders consumer.
func NewConsumer(subscription *gcppubsub.Subscriber, service *Service, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if service == nil {
		return nil, errors.New("ingest service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{subscription: subscription, service: service, logg: logg}, nil
}

// Run consumes order messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if c.process(innerCtx, msg) {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// process returns true when the message should be redelivered.
func (c *Consumer) process(ctx context.Context, msg *gcppubsub.Message) bool {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	envelope, err := DecodeEnvelope(msg.Data)
	if err != nil {
		// Undecodable messages are acked; redelivery cannot fix them.
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "invalid order envelope")
		return false
	}

	if err := c.service.Process(logCtx, envelope); err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeValidation {
			return false
		}
		return true
	}
	return false
}

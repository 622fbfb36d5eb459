package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/shop/internal/common/constants"
	commonErrors "github.com/Alturino/shop/internal/common/errors"
	"github.com/Alturino/shop/internal/event"
	"github.com/Alturino/shop/internal/log"
	"github.com/Alturino/shop/notification/internal/otel"
)

type NotificationService struct {
	subscriber event.Subscriber
}

func NewNotificationService(subscriber event.Subscriber) *NotificationService {
	return &NotificationService{subscriber: subscriber}
}

// Run consumes order events until c is done.
func (s *NotificationService) Run(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationService Run").
		Str(log.KeyProcess, "consuming order events").
		Logger()

	logger.Info().Msg("consuming order events")
	c = logger.WithContext(c)
	if err := s.subscriber.Subscribe(c, s.Handle); err != nil {
		err = fmt.Errorf("failed consuming order events with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("stopped consuming order events")
	return nil
}

// Handle logs an order confirmation. Unknown event types are skipped.
func (s *NotificationService) Handle(c context.Context, e event.Envelope) error {
	c, span := otel.Tracer.Start(e.Context(c), "NotificationService Handle", trace.WithAttributes(
		attribute.String(log.KeyEvent, e.Type),
	))
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "NotificationService Handle").
		Str(log.KeyEvent, e.Type).
		Logger()

	if e.Type != constants.EventOrderCreated {
		logger.Debug().Msg("skipping event")
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "decoding order created").Logger()
	created := event.OrderCreated{}
	if err := e.Decode(&created); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger.Info().
		Str(log.KeyOrderID, created.OrderID.String()).
		Str(log.KeyUserID, created.UserID.String()).
		Str(log.KeyOrderTotal, created.TotalPrice.StringFixed(2)).
		Int(log.KeyOrderItems, created.ItemCount).
		Msg("sent order confirmation")
	return nil
}

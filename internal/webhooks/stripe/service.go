package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/adriancampa/storeloom-backend/pkg/db"
	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	pkgerrors "github.com/adriancampa/storeloom-backend/pkg/errors"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
)

// metadataOrderKey is the payment intent metadata field carrying our order id.
const metadataOrderKey = "order_id"

// OrderTransitions is the slice of the orders service the webhook needs.
type OrderTransitions interface {
	ApplyPaymentSucceeded(ctx context.Context, orderID string) error
	ApplyPaymentFailed(ctx context.Context, orderID string) error
}

// Service applies verified Stripe events to order payment state.
type Service interface {
	HandleEvent(ctx context.Context, event stripeapi.Event) error
}

type service struct {
	events EventRepository
	orders OrderTransitions
	guard  *IdempotencyGuard
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds a webhook service with the required dependencies.
func NewService(events EventRepository, orders OrderTransitions, guard *IdempotencyGuard, logg *logger.Logger) (Service, error) {
	if events == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order transitions required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		events: events,
		orders: orders,
		guard:  guard,
		logg:   logg,
		now:    time.Now,
	}, nil
}

// HandleEvent processes one verified delivery. Unknown event types are
// acknowledged without side effects. Replays are no-ops, fenced first by the
// redis reservation and then by the payment_events primary key. Processing
// failures release the reservation so the provider's retry can try again.
func (s *service) HandleEvent(ctx context.Context, event stripeapi.Event) error {
	eventType := string(event.Type)
	if eventType != eventPaymentSucceeded && eventType != eventPaymentFailed {
		s.logg.Info(s.logg.WithField(ctx, "event_type", eventType), "ignoring unhandled stripe event")
		return nil
	}

	fresh, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook idempotency check")
	}
	if !fresh {
		s.logg.Info(s.logg.WithField(ctx, "event_id", event.ID), "duplicate stripe event skipped")
		return nil
	}

	if err := s.process(ctx, event, eventType); err != nil {
		if releaseErr := s.guard.Release(ctx, event.ID); releaseErr != nil {
			s.logg.Error(ctx, "releasing webhook reservation", releaseErr)
		}
		return err
	}
	return nil
}

func (s *service) process(ctx context.Context, event stripeapi.Event, eventType string) error {
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent")
	}
	orderID := intent.Metadata[metadataOrderKey]
	if orderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent missing order id metadata")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"event_id": event.ID, "order_id": orderID})

	// The durable record is written only after the transition lands, so a
	// released reservation never leaves a half-processed event behind the
	// primary-key fence.
	prior, err := s.events.FindEvent(ctx, event.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up payment event")
	}
	if prior != nil {
		s.logg.Warn(ctx, "stripe event already recorded")
		return nil
	}

	switch eventType {
	case eventPaymentSucceeded:
		if err := s.orders.ApplyPaymentSucceeded(ctx, orderID); err != nil {
			return err
		}
		s.logg.Info(ctx, "payment completed")
	case eventPaymentFailed:
		if err := s.orders.ApplyPaymentFailed(ctx, orderID); err != nil {
			return err
		}
		s.logg.Info(ctx, "payment failed recorded")
	}

	record := &models.PaymentEvent{
		ID:             event.ID,
		OrderID:        orderID,
		Type:           eventType,
		RawAmountCents: int(intent.Amount),
		ProcessedAt:    s.now().UTC(),
	}
	if err := s.events.CreateEvent(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			s.logg.Warn(ctx, "stripe event already recorded")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment event")
	}
	return nil
}

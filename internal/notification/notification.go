package notification

import (
	"context"

	"go-timeoff/internal/events"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/shared/contextutil"

	"go.uber.org/zap"
)

// Dispatcher informs employees and approvers about lifecycle transitions.
// Callers invoke it after their transaction commits and only log failures.
//
//go:generate mockgen -source=notification.go -destination=mock/notification_mock.go -package=mock
type Dispatcher interface {
	Dispatch(ctx context.Context, event events.TimeOffLifecycleEvent) error
}

type outboxDispatcher struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

// NewOutboxDispatcher stores events in the outbox table; cmd/worker relays
// them to Kafka.
func NewOutboxDispatcher(outbox kafka.OutboxRepository, logger ...*zap.Logger) Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}
	return &outboxDispatcher{outbox: outbox, logger: l}
}

func (d *outboxDispatcher) Dispatch(ctx context.Context, event events.TimeOffLifecycleEvent) error {
	rid := contextutil.GetRequestID(ctx)
	row, err := kafka.NewOutboxEvent(kafka.OutboxMessage{
		RequestID:      rid,
		OrganizationID: event.OrganizationID,
		AggregateType:  kafka.AggregateTimeOffRequest,
		AggregateID:    event.RequestID,
		EventType:      event.EventType,
		Topic:          events.TimeOffLifecycleTopic,
		Payload:        event,
	})
	if err != nil {
		return err
	}

	if err := d.outbox.Create(ctx, row); err != nil {
		return err
	}

	d.logger.Debug("notification queued",
		zap.String("request_id", rid),
		zap.String("outbox_id", row.ID),
		zap.String("event_type", event.EventType),
		zap.String("recipient_id", event.RecipientID),
	)
	return nil
}

type noopDispatcher struct{}

// NewNoopDispatcher drops every event.
func NewNoopDispatcher() Dispatcher {
	return noopDispatcher{}
}

func (noopDispatcher) Dispatch(context.Context, events.TimeOffLifecycleEvent) error {
	return nil
}

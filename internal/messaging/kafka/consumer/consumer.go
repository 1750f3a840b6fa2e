package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-timeoff/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type BalanceCache interface {
	Invalidate(ctx context.Context, organizationID, employeeID string, period int) error
}

// RetryPolicy bounds how long one message is retried in place before the
// consumer commits past it. Zero fields take defaults.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries == 0 {
		p.MaxRetries = 4
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 200 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	return p
}

func (p RetryPolicy) backoff() retry.Backoff {
	return retry.WithCappedDuration(p.MaxDelay, retry.NewExponential(p.BaseDelay))
}

// ConsumeTimeOffLifecycle handles one message at a time and commits it
// only after the handler succeeded or its retries ran out. Offsets are
// committed in order, so a message is never skipped by a later commit
// while it is still being retried.
func ConsumeTimeOffLifecycle(
	ctx context.Context,
	reader MessageReader,
	cache BalanceCache,
	policy RetryPolicy,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.timeoff_lifecycle")
	log.Info("time-off lifecycle consumer started")
	policy = policy.withDefaults()

	fetchBackoff := policy.backoff()
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("time-off lifecycle consumer stopped")
				return
			}
			delay, _ := fetchBackoff.Next()
			log.Error("fetch time-off lifecycle message failed",
				zap.Duration("retry_in", delay),
				zap.Error(err),
			)
			if !sleep(ctx, delay) {
				log.Info("time-off lifecycle consumer stopped")
				return
			}
			continue
		}
		fetchBackoff = policy.backoff()

		attempt := 0
		err = retry.Do(ctx, retry.WithMaxRetries(policy.MaxRetries, policy.backoff()), func(ctx context.Context) error {
			attempt++
			if err := HandleLifecycleMessage(ctx, cache, msg, log); err != nil {
				log.Warn("handle time-off lifecycle message failed",
					zap.Int64("offset", msg.Offset),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				return retry.RetryableError(err)
			}
			return nil
		})
		if ctx.Err() != nil {
			// Uncommitted; the group resumes from the last committed offset.
			log.Info("time-off lifecycle consumer stopped", zap.Int64("offset", msg.Offset))
			return
		}
		if err != nil {
			// The cached balance still expires after its TTL.
			log.Error("giving up on time-off lifecycle message",
				zap.Int64("offset", msg.Offset),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit time-off lifecycle message failed", zap.Error(err))
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// HandleLifecycleMessage evicts the cached balance for events that moved
// the ledger and records delivery. Undecodable messages are logged and
// reported as handled.
func HandleLifecycleMessage(ctx context.Context, cache BalanceCache, msg kafkago.Message, log *zap.Logger) error {
	var event events.TimeOffLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode time-off lifecycle event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	if event.TouchesBalance() {
		if err := cache.Invalidate(ctx, event.OrganizationID, event.EmployeeID, event.Period); err != nil {
			return fmt.Errorf("invalidate balance cache: %w", err)
		}
	}

	log.Info("time-off notification delivered",
		zap.String("event_type", event.EventType),
		zap.String("time_off_id", event.RequestID),
		zap.String("reference", event.Reference),
		zap.String("organization_id", event.OrganizationID),
		zap.String("recipient_id", event.RecipientID),
		zap.String("request_id", headerValue(msg, "request_id")),
	)
	return nil
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

package producer

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	DefaultBatchSize    = 50
	DefaultPollInterval = 3 * time.Second
)

type RelayConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// RelayStats summarises one relay pass.
type RelayStats struct {
	Claimed int
	Sent    int
	Failed  int
	Dead    int
}

// Relay moves outbox rows to Kafka. Rows stay locked while a batch is
// published, so several relays can run against the same table.
type Relay struct {
	db     *sql.DB
	repo   kafka.OutboxRepository
	writer MessageWriter
	cfg    RelayConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewRelay(db *sql.DB, repo kafka.OutboxRepository, writer MessageWriter, cfg RelayConfig, logger ...*zap.Logger) *Relay {
	l := zap.L().Named("kafka.producer.relay")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.producer.relay")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Relay{db: db, repo: repo, writer: writer, cfg: cfg, now: time.Now, logger: l}
}

// Run polls until ctx is cancelled. A full batch triggers the next pass
// immediately instead of waiting for the ticker.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started",
		zap.Duration("poll_interval", r.cfg.PollInterval),
		zap.Int("batch_size", r.cfg.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
		}

		for {
			stats, err := r.RelayOnce(ctx)
			if err != nil {
				if ctx.Err() == nil {
					r.logger.Error("outbox relay pass failed", zap.Error(err))
				}
				break
			}
			if stats.Claimed < r.cfg.BatchSize {
				break
			}
		}
	}
}

// RelayOnce claims one batch, publishes it and records the outcome of
// every row in the same transaction.
func (r *Relay) RelayOnce(ctx context.Context) (RelayStats, error) {
	var stats RelayStats

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback()

	repo := r.repo.WithTx(tx)
	claimed, err := repo.ClaimDue(ctx, r.now(), r.cfg.BatchSize)
	if err != nil {
		return stats, err
	}
	stats.Claimed = len(claimed)
	if len(claimed) == 0 {
		return stats, tx.Commit()
	}

	for _, event := range claimed {
		if pubErr := r.writer.WriteMessages(ctx, toMessage(event)); pubErr != nil {
			event.RecordFailure(pubErr, r.now())
			if err := repo.SaveAttempt(ctx, event); err != nil {
				return stats, err
			}
			r.logFailure(event, pubErr)
			if event.Status == kafka.OutboxStatusDead {
				stats.Dead++
			} else {
				stats.Failed++
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID, r.now()); err != nil {
			return stats, err
		}
		stats.Sent++
		r.logger.Debug("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID),
		)
	}

	if err := tx.Commit(); err != nil {
		return stats, err
	}

	r.logger.Info("outbox batch relayed",
		zap.Int("claimed", stats.Claimed),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("dead", stats.Dead),
	)
	return stats, nil
}

func (r *Relay) logFailure(event kafka.OutboxEvent, err error) {
	fields := []zap.Field{
		zap.String("outbox_id", event.ID),
		zap.String("event_type", event.EventType),
		zap.String("topic", event.Topic),
		zap.Int("attempts", event.Attempts),
		zap.Error(err),
	}
	if event.Status == kafka.OutboxStatusDead {
		r.logger.Error("outbox event dead-lettered", fields...)
		return
	}
	r.logger.Warn("outbox publish failed, retry scheduled", append(fields, zap.Time("available_at", event.AvailableAt))...)
}

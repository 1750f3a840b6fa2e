package kafka

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	// OutboxStatusDead rows exhausted their attempts and are never claimed again.
	OutboxStatusDead = "dead"
)

const AggregateTimeOffRequest = "time_off_request"

const (
	MaxOutboxAttempts = 8
	maxLastErrorRunes = 500
	baseRetryDelay    = 5 * time.Second
	maxRetryDelay     = 5 * time.Minute
)

// OutboxEvent is one row of outbox_events. Status moves
// pending -> sent, or pending -> failed (-> failed ...) -> sent | dead.
type OutboxEvent struct {
	ID             string
	RequestID      string
	OrganizationID string
	AggregateType  string
	AggregateID    string
	EventType      string
	Topic          string
	Payload        json.RawMessage
	Status         string
	Attempts       int
	LastError      string
	AvailableAt    time.Time
	CreatedAt      time.Time
}

// OutboxMessage is what a producer hands to NewOutboxEvent.
type OutboxMessage struct {
	RequestID      string
	OrganizationID string
	AggregateType  string
	AggregateID    string
	EventType      string
	Topic          string
	Payload        any
}

// NewOutboxEvent encodes msg.Payload as JSON into a pending row.
func NewOutboxEvent(msg OutboxMessage) (OutboxEvent, error) {
	body, err := json.Marshal(msg.Payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("encode outbox payload: %w", err)
	}
	event := OutboxEvent{
		ID:             uuid.NewString(),
		RequestID:      msg.RequestID,
		OrganizationID: msg.OrganizationID,
		AggregateType:  msg.AggregateType,
		AggregateID:    msg.AggregateID,
		EventType:      msg.EventType,
		Topic:          msg.Topic,
		Payload:        body,
		Status:         OutboxStatusPending,
	}
	return event, ValidateOutboxEvent(event)
}

// RecordFailure counts a failed publish attempt and schedules the next one,
// or marks the row dead once MaxOutboxAttempts is reached.
func (e *OutboxEvent) RecordFailure(cause error, now time.Time) {
	e.Attempts++
	e.LastError = truncateRunes(cause.Error(), maxLastErrorRunes)
	if e.Attempts >= MaxOutboxAttempts {
		e.Status = OutboxStatusDead
		return
	}
	e.Status = OutboxStatusFailed
	e.AvailableAt = now.Add(RetryDelay(e.Attempts))
}

// RetryDelay doubles from baseRetryDelay per attempt, capped at maxRetryDelay.
func RetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		return baseRetryDelay
	}
	d := baseRetryDelay
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	// ClaimDue locks up to limit deliverable rows. Concurrent relays skip
	// rows another transaction already holds.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	SaveAttempt(ctx context.Context, event OutboxEvent) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) conn() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	_, err := r.conn().ExecContext(ctx, `
INSERT INTO outbox_events (
	id, request_id, organization_id, aggregate_type, aggregate_id, event_type, topic, payload, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.RequestID, event.OrganizationID, event.AggregateType,
		event.AggregateID, event.EventType, event.Topic, []byte(event.Payload), event.Status,
	)
	return err
}

func (r *outboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]OutboxEvent, error) {
	rows, err := r.conn().QueryContext(ctx, `
SELECT id::text, COALESCE(request_id, ''), organization_id::text, aggregate_type,
	aggregate_id::text, event_type, topic, payload, status, attempts,
	COALESCE(last_error, ''), available_at, created_at
FROM outbox_events
WHERE status IN ($1, $2) AND available_at <= $3
ORDER BY created_at ASC
LIMIT $4
FOR UPDATE SKIP LOCKED`,
		OutboxStatusPending, OutboxStatusFailed, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claimed []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		var payload []byte
		if err := rows.Scan(
			&e.ID, &e.RequestID, &e.OrganizationID, &e.AggregateType,
			&e.AggregateID, &e.EventType, &e.Topic, &payload, &e.Status, &e.Attempts,
			&e.LastError, &e.AvailableAt, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Payload = payload
		claimed = append(claimed, e)
	}
	return claimed, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := r.conn().ExecContext(ctx, `
UPDATE outbox_events
SET status = $2, sent_at = $3, last_error = NULL, updated_at = $3
WHERE id = $1`,
		id, OutboxStatusSent, at,
	)
	return err
}

func (r *outboxRepository) SaveAttempt(ctx context.Context, event OutboxEvent) error {
	if event.Status != OutboxStatusFailed && event.Status != OutboxStatusDead {
		return fmt.Errorf("save attempt: unexpected outbox status %q", event.Status)
	}
	_, err := r.conn().ExecContext(ctx, `
UPDATE outbox_events
SET status = $2, attempts = $3, last_error = $4, available_at = $5, updated_at = NOW()
WHERE id = $1`,
		event.ID, event.Status, event.Attempts, event.LastError, event.AvailableAt,
	)
	return err
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if event.AggregateID == "" {
		return errors.New("outbox aggregate id is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed, OutboxStatusDead:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

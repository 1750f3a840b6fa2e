package kafka_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"go-timeoff/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func approvedMessage() kafka.OutboxMessage {
	return kafka.OutboxMessage{
		RequestID:      "rid-1",
		OrganizationID: "org-1",
		AggregateType:  kafka.AggregateTimeOffRequest,
		AggregateID:    "req-1",
		EventType:      "time_off.approved",
		Topic:          "topic.v1",
		Payload:        map[string]string{"status": "APPROVED"},
	}
}

func TestNewOutboxEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		event, err := kafka.NewOutboxEvent(approvedMessage())

		assert.NoError(t, err)
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, kafka.OutboxStatusPending, event.Status)
		assert.JSONEq(t, `{"status":"APPROVED"}`, string(event.Payload))
	})

	t.Run("negative missing topic", func(t *testing.T) {
		msg := approvedMessage()
		msg.Topic = ""
		_, err := kafka.NewOutboxEvent(msg)
		assert.EqualError(t, err, "outbox topic is required")
	})

	t.Run("negative missing aggregate", func(t *testing.T) {
		msg := approvedMessage()
		msg.AggregateID = ""
		_, err := kafka.NewOutboxEvent(msg)
		assert.EqualError(t, err, "outbox aggregate id is required")
	})

	t.Run("negative unencodable payload", func(t *testing.T) {
		msg := approvedMessage()
		msg.Payload = make(chan int)
		_, err := kafka.NewOutboxEvent(msg)
		assert.ErrorContains(t, err, "encode outbox payload")
	})
}

func TestOutboxEvent_RecordFailure(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("success first failure retries after base delay", func(t *testing.T) {
		event := kafka.OutboxEvent{Status: kafka.OutboxStatusPending}
		event.RecordFailure(errors.New("broker unavailable"), now)

		assert.Equal(t, kafka.OutboxStatusFailed, event.Status)
		assert.Equal(t, 1, event.Attempts)
		assert.Equal(t, now.Add(5*time.Second), event.AvailableAt)
	})

	t.Run("success long error is truncated", func(t *testing.T) {
		event := kafka.OutboxEvent{}
		event.RecordFailure(errors.New(strings.Repeat("é", 600)), now)
		assert.Len(t, []rune(event.LastError), 500)
	})

	t.Run("negative final attempt goes dead", func(t *testing.T) {
		event := kafka.OutboxEvent{Attempts: kafka.MaxOutboxAttempts - 1, AvailableAt: now}
		event.RecordFailure(errors.New("broker unavailable"), now.Add(time.Hour))

		assert.Equal(t, kafka.OutboxStatusDead, event.Status)
		assert.Equal(t, now, event.AvailableAt)
	})
}

func TestRetryDelay(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 5 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{4, 40 * time.Second},
		{7, 5 * time.Minute},
		{30, 5 * time.Minute},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, kafka.RetryDelay(tc.attempts), "attempts=%d", tc.attempts)
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	event, err := kafka.NewOutboxEvent(approvedMessage())
	assert.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WithArgs(event.ID, "rid-1", "org-1", kafka.AggregateTimeOffRequest, "req-1", "time_off.approved", "topic.v1", []byte(event.Payload), kafka.OutboxStatusPending).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.Create(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success inside transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		tx, err := db.Begin()
		assert.NoError(t, err)
		assert.NoError(t, repo.WithTx(tx).Create(context.Background(), event))
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative db error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
			WillReturnError(errors.New("db down"))

		assert.Error(t, repo.Create(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative invalid status never hits db", func(t *testing.T) {
		bad := event
		bad.Status = "unknown"
		assert.Error(t, repo.Create(context.Background(), bad))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_ClaimDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	columns := []string{"id", "request_id", "organization_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "attempts", "last_error", "available_at", "created_at"}

	t.Run("success skips locked rows", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE SKIP LOCKED")).
			WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, now, 20).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("o-1", "rid-1", "org-1", kafka.AggregateTimeOffRequest, "req-1", "time_off.approved", "topic.v1", []byte(`{}`), kafka.OutboxStatusFailed, 2, "timeout", now, now))

		events, err := repo.ClaimDue(context.Background(), now, 20)

		assert.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, 2, events[0].Attempts)
		assert.Equal(t, "timeout", events[0].LastError)
		assert.JSONEq(t, `{}`, string(events[0].Payload))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative query error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).WillReturnError(errors.New("db down"))

		_, err := repo.ClaimDue(context.Background(), now, 20)
		assert.EqualError(t, err, "db down")
	})
}

func TestOutboxRepository_Outcomes(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("success mark sent", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
			WithArgs("o-1", kafka.OutboxStatusSent, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkSent(context.Background(), "o-1", now))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success save failed attempt", func(t *testing.T) {
		event := kafka.OutboxEvent{ID: "o-2", Status: kafka.OutboxStatusFailed, Attempts: 3, LastError: "timeout", AvailableAt: now}
		mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
			WithArgs("o-2", kafka.OutboxStatusFailed, 3, "timeout", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SaveAttempt(context.Background(), event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative save attempt rejects sent status", func(t *testing.T) {
		err := repo.SaveAttempt(context.Background(), kafka.OutboxEvent{ID: "o-3", Status: kafka.OutboxStatusSent})
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

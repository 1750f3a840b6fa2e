package bootstrap_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"go-timeoff/internal/bootstrap"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []bootstrap.AuditLog
}

func (r *recordingAudit) Log(ctx context.Context, entry bootstrap.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func TestServe_ShutdownWritesAudit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	audit := &recordingAudit{}

	done := make(chan error, 1)
	go func() {
		done <- bootstrap.Serve(ctx, http.NotFoundHandler(), bootstrap.ServerConfig{
			Port:            "0",
			ShutdownTimeout: time.Second,
		}, audit)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Len(t, audit.entries, 1)
	assert.Equal(t, "SERVER_SHUTDOWN", audit.entries[0].Action)
}

func TestZapAuditLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bootstrap.NewZapAuditLogger(zap.New(core)).Log(context.Background(), bootstrap.AuditLog{
		Action:  "SERVER_SHUTDOWN",
		Message: "bye",
	})

	entries := logs.FilterMessage("audit event").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "SERVER_SHUTDOWN", entries[0].ContextMap()["action"])
}

package contextutil

import (
	"context"

	"go.uber.org/zap"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	actorKey
	loggerKey
)

// ActorRef identifies who is acting on behalf of a request. It carries
// only the token claims; capabilities are resolved by the authorization port.
type ActorRef struct {
	EmployeeID     string
	OrganizationID string
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

func WithActor(ctx context.Context, actor ActorRef) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor reports false for unauthenticated contexts such as background
// workers.
func GetActor(ctx context.Context) (ActorRef, bool) {
	actor, ok := ctx.Value(actorKey).(ActorRef)
	return actor, ok && actor.EmployeeID != ""
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger never returns nil: request logger, then fallback, then a no-op.
func GetLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// Fields renders the tracing values in ctx for loggers that were not
// derived from the request logger.
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if rid := GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if actor, ok := GetActor(ctx); ok {
		fields = append(fields,
			zap.String("employee_id", actor.EmployeeID),
			zap.String("organization_id", actor.OrganizationID),
		)
	}
	return fields
}

// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// GlobalLogger is the default logger for components that run outside a request.
var GlobalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogger replaces GlobalLogger, typically with the request-aware logger
// built by the middleware package.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = l
	}
}

func attrs(base []any, fields map[string]interface{}) []any {
	for k, v := range fields {
		base = append(base, slog.Any(k, v))
	}
	return base
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	table string
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]interface{}) {
	l.log(ctx, "delete", fields)
}

func (l *RepoLogger) log(ctx context.Context, op string, fields map[string]interface{}) {
	GlobalLogger.InfoContext(ctx, "repository "+op,
		attrs([]any{slog.String("table", l.table), slog.String("operation", op)}, fields)...)
}

// LogError logs a repository error.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	GlobalLogger.ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// WSLogger provides structured logging for websocket hubs.
type WSLogger struct {
	hub string
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

// LogConnect logs a websocket connection event.
func (l *WSLogger) LogConnect(ctx context.Context, userID uint) {
	GlobalLogger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
	)
}

// LogDisconnect logs a websocket disconnection event.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID uint, reason string) {
	GlobalLogger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("reason", reason),
	)
}

// LogError logs a websocket error event.
func (l *WSLogger) LogError(ctx context.Context, userID uint, err error, eventType string) {
	GlobalLogger.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogAsyncOperationError logs the failure of work that outlives its request,
// such as media cleanup or realtime fan-out.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	GlobalLogger.ErrorContext(ctx, "async operation failed",
		attrs([]any{
			slog.String("operation", operation),
			slog.String("type", "async_error"),
			slog.String("error", err.Error()),
		}, fields)...)
}

package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	LogFieldRequestID  = "request_id"
	LogFieldUserID     = "user_id"
	LogFieldOperation  = "operation"
	LogFieldMemberID   = "member_id"
	LogFieldBatchUID   = "batch_uid"
	LogFieldDuration   = "duration_ms"
	LogFieldInputLen   = "input_length"
	LogFieldErrorCode  = "error_code"
	LogFieldMemberSize = "member_count"
)

// RequestContext carries the request-scoped logging fields of one board operation.
type RequestContext struct {
	RequestID string
	UserID    string
	Operation string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a new request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, operation, userID string) *RequestContext {
	return NewRequestContextWithID(logger, uuid.NewString(), operation, userID)
}

// NewRequestContextWithID creates a new request context with a specific request ID.
func NewRequestContextWithID(logger *slog.Logger, requestID, operation, userID string) *RequestContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestContext{
		RequestID: requestID,
		UserID:    userID,
		Operation: operation,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelInfo, msg, attrs...)
}

// Debug logs a debug message.
func (r *RequestContext) Debug(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelDebug, msg, attrs...)
}

// Warn logs a warning message.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.log(slog.LevelWarn, msg, attrs...)
}

// Error logs an error message with the error.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	r.log(slog.LevelError, msg, attrs...)
}

// Duration returns the elapsed time since the request started.
func (r *RequestContext) Duration() time.Duration {
	return time.Since(r.StartTime)
}

func (r *RequestContext) log(level slog.Level, msg string, attrs ...slog.Attr) {
	combined := append([]slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.String(LogFieldUserID, r.UserID),
		slog.String(LogFieldOperation, r.Operation),
	}, attrs...)
	r.Logger.LogAttrs(context.Background(), level, msg, combined...)
}

type ctxKey struct{}

// WithRequestContext adds the request context to the context.
func WithRequestContext(ctx context.Context, reqCtx *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, reqCtx)
}

// FromContext extracts the request context from the context.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	reqCtx, ok := ctx.Value(ctxKey{}).(*RequestContext)
	return reqCtx, ok
}

// RequestContextFrom returns the request context stored in ctx, or a fresh
// one for operation and userID when ctx carries none.
func RequestContextFrom(ctx context.Context, logger *slog.Logger, operation, userID string) *RequestContext {
	if reqCtx, ok := FromContext(ctx); ok {
		return &RequestContext{
			RequestID: reqCtx.RequestID,
			UserID:    userID,
			Operation: operation,
			StartTime: time.Now(),
			Logger:    reqCtx.Logger,
		}
	}
	return NewRequestContext(logger, operation, userID)
}

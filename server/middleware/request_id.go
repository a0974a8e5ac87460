package middleware

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 64

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

type requestIDKey struct{}

// ResolveRequestID возвращает идентификатор клиента, если он не длиннее 64
// символов и состоит из безопасных для журнала символов, иначе новый UUID
func ResolveRequestID(header string) string {
	if header != "" && len(header) <= maxRequestIDLength && requestIDPattern.MatchString(header) {
		return header
	}
	return uuid.New().String()
}

// WithRequestID сохраняет request ID в контексте
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

// RequestID извлекает request ID из контекста
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	reqID, _ := ctx.Value(requestIDKey{}).(string)
	return reqID
}

// Logger дополняет логгер полем request_id, если оно есть в контексте.
// Так записи сервисов о прогонах сопоставления и обучении связываются с запросом.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if reqID := RequestID(ctx); reqID != "" {
		return base.With("request_id", reqID)
	}
	return base
}

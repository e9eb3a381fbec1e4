package logging

import (
	"context"
	"log/slog"

	"voxpitch/internal/services"
)

// WithContext returns a logger annotated with request-scoped fields found in
// ctx. The logger is unchanged when no fields are present.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		logger = logger.With(String("request_id", id))
	}
	return logger
}

package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs dispatch start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
		logger.Info("dispatch started",
			slog.String("request_id", inv.ID.String()),
			slog.String("kind", inv.Kind.String()),
			slog.String("service", inv.Service),
			slog.String("method", inv.Method),
		)

		start := time.Now()
		result, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("dispatch failed",
				slog.String("request_id", inv.ID.String()),
				slog.String("service", inv.Service),
				slog.String("method", inv.Method),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("dispatch completed",
				slog.String("request_id", inv.ID.String()),
				slog.String("service", inv.Service),
				slog.String("method", inv.Method),
				slog.Duration("elapsed", elapsed),
			)
		}

		return result, err
	}
}

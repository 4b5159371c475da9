package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs each operation at debug level and
// failures at error level.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, op *Op, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		attrs := []any{
			slog.String("op", op.Name),
			slog.String("queue", op.Queue),
			slog.String("job_id", op.JobID.String()),
			slog.Duration("elapsed", elapsed),
		}
		if err != nil {
			logger.ErrorContext(ctx, "resque operation failed",
				append(attrs, slog.String("error", err.Error()))...,
			)
			return err
		}
		logger.DebugContext(ctx, "resque operation", attrs...)
		return nil
	}
}

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that converts panics below it, typically
// from a store adapter or extension, into errors logged with a stack
// trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, op *Op, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("resque operation panicked",
					slog.String("op", op.Name),
					slog.String("queue", op.Queue),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				retErr = fmt.Errorf("panic in %s: %v", op.Name, r)
			}
		}()
		return next(ctx)
	}
}

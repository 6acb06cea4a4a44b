package logger

import (
	"context"
	"errors"
)

// LogIfError logs err unless it is nil or a context cancellation.
func LogIfError(ctx context.Context, logger Logger, err error, msg string, fields ...interface{}) {
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error(ctx, msg, append(fields, "error", err)...)
	}
}

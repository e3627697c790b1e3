package trace

import (
	"context"
	"log/slog"
)

// Enabled reports whether logging at the given level is enabled.
// Returns false if logger is nil.
//
// Use this to guard a run of related log calls or work done only for
// logging. For single calls, prefer [Debug]/[Warn] or the lazy variant
// [DebugLazy].
func Enabled(ctx context.Context, logger *slog.Logger, level slog.Level) bool {
	if logger == nil {
		return false
	}
	return logger.Enabled(ctx, level)
}

// Debug logs a message at Debug level if the logger is non-nil and enabled.
//
// Use for simple, pre-computed attributes only. The variadic attrs are
// evaluated at the call site even when logging is disabled. For computed
// attributes (function calls, fmt.Sprintf, slice ops), use [DebugLazy].
func Debug(ctx context.Context, logger *slog.Logger, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

// DebugLazy logs at Debug level with lazily-computed attributes.
//
// The fn is not called if logging is disabled, guaranteeing no allocation
// from attribute construction. Use this for any computed attributes:
// function calls, fmt.Sprintf, slice operations, struct construction.
func DebugLazy(ctx context.Context, logger *slog.Logger, msg string, fn func() []slog.Attr) {
	if logger == nil {
		return
	}
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	logger.LogAttrs(ctx, slog.LevelDebug, msg, fn()...)
}

// Warn logs a message at Warn level if the logger is non-nil and enabled.
//
// Warn is for recoverable pipeline anomalies that are not user-facing
// content issues (those go to the diag sink) and not returned errors —
// e.g. an analysis that continued past a partial failure.
func Warn(ctx context.Context, logger *slog.Logger, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		return
	}
	logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

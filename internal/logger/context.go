package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	adminIDKey   contextKey = "admin_id"
)

// WithRequestID сохраняет request id в ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithAdminID сохраняет id авторизованного администратора в ctx
func WithAdminID(ctx context.Context, adminID uint) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetAdminID(ctx context.Context) (uint, bool) {
	adminID, ok := ctx.Value(adminIDKey).(uint)
	return adminID, ok
}

// FromContext возвращает глобальный логгер с request_id и admin_id, если они есть
func FromContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if ctx == nil {
		return logger
	}

	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if adminID, ok := GetAdminID(ctx); ok {
		fields = append(fields, "admin_id", strconv.FormatUint(uint64(adminID), 10))
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}

// CtxWithError логирует на уровне error с полем "error"
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	fields := append([]any{"error", err.Error()}, args...)
	FromContext(ctx).Error(msg, fields...)
}

// RecoverPanic гасит панику фоновой горутины и пишет ее в лог со стеком.
// Вызывать только через defer в самой горутине.
func RecoverPanic(ctx context.Context, operation string, args ...any) {
	if r := recover(); r != nil {
		fields := append([]any{
			"operation", operation,
			"panic", fmt.Sprint(r),
			"stack", string(debug.Stack()),
		}, args...)
		CtxError(ctx, "Recovered from panic in background goroutine", fields...)
	}
}

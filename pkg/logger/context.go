package logger

import "context"

type contextKey string

const (
	TraceIDKey      = contextKey("trace_id")
	UserIDKey       = contextKey("user_id")
	RequestIDKey    = contextKey("request_id")
	SessionIDKey    = contextKey("session_id")
	CustomFieldsKey = contextKey("custom_fields")
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithSessionID stores a session fingerprint. Never pass the raw token.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func WithCustomFields(ctx context.Context, fields map[string]interface{}) context.Context {
	return context.WithValue(ctx, CustomFieldsKey, fields)
}

// RequestID returns the id assigned by Middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// FromContext returns the preset fields in ctx as alternating key/value pairs.
func FromContext(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	var fields []interface{}

	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		fields = append(fields, "trace_id", traceID)
	}
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		fields = append(fields, "user_id", userID)
	}
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		fields = append(fields, "request_id", requestID)
	}
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok {
		fields = append(fields, "session_id", sessionID)
	}
	if customFields, ok := ctx.Value(CustomFieldsKey).(map[string]interface{}); ok {
		for k, v := range customFields {
			fields = append(fields, k, v)
		}
	}

	return fields
}

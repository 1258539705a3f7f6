package log

import "context"

// Hook injects fields derived from the context into every log entry.
type Hook interface {
	Apply(ctx context.Context, msg string) []Field
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, msg string) []Field

func (f HookFunc) Apply(ctx context.Context, msg string) []Field {
	return f(ctx, msg)
}

type requestIDKey struct{}

// WithRequestID attaches a request identifier to the context. The request
// hook picks it up for every entry logged under that context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID reads the request identifier from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func requestFields(ctx context.Context, _ string) []Field {
	if ctx == nil {
		return nil
	}

	var fields []Field

	if id, ok := GetRequestID(ctx); ok {
		fields = append(fields, String("request_id", id))
	}

	return fields
}

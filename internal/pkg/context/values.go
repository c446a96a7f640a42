// Package context carries per-request values that outlive the HTTP layer:
// the request id echoed to clients and stamped on logs and domain events, and
// the id of the signed-in user once a bearer token has been accepted.
package context

import "context"

type (
	requestIDKey struct{}
	userIDKey    struct{}
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns "" when ctx carries no request id.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey{})
}

func stringValue(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

package trace

import "context"

// requestIDKey is the unexported context key for request IDs. Using a
// distinct struct type prevents collisions with keys from other packages.
type requestIDKey struct{}

// WithRequestID returns a context carrying the given request ID.
//
// The language server stamps one ID per dispatched request so the start
// and end logs of every operation under that request correlate. An empty
// string is a valid ID and is distinguishable from "not set".
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom extracts the request ID from the context, reporting
// whether one was set.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

package identity

import "context"

// Identity is the verified caller supplied by the auth middleware. Core
// services take it explicitly; nothing reads it from process-wide state.
type Identity struct {
	ID    uint32
	Email string
}

type ctxKey struct{}

func WithContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

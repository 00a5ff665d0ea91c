package middleware

import (
	"context"

	"github.com/rentora/posts-service/internal/entity"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// IdentityCtxKey is the key under which the verified caller identity is
// stored in the request context.
const IdentityCtxKey = ContextKey("identity")

// IdentityFromContext returns the verified identity placed there by the
// Authenticate middleware, or nil for unauthenticated requests.
func IdentityFromContext(ctx context.Context) *entity.Identity {
	identity, _ := ctx.Value(IdentityCtxKey).(*entity.Identity)
	return identity
}

// Package auth materializes the authenticated principal supplied by the
// upstream auth service. Identity arrives on trusted gateway headers and is
// not re-verified here.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type Role string

const (
	RoleClient      Role = "client"
	RoleAdmin       Role = "admin"
	RoleFulfillment Role = "fulfillment"
)

const (
	userIDHeader   = "X-User-Id"
	userRoleHeader = "X-User-Role"
)

type Principal struct {
	ID   string
	Role Role
}

// Privileged reports whether the principal may act across all orders
// (administrative and fulfillment staff).
func (p Principal) Privileged() bool {
	return p.Role == RoleAdmin || p.Role == RoleFulfillment
}

// CanAccessOrder applies the view-level access rule: clients see only their
// own orders, privileged roles see any order.
func (p Principal) CanAccessOrder(ownerID string) bool {
	return p.Privileged() || p.ID == ownerID
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Middleware reads the identity headers set by the gateway and injects the
// principal into the request context. Requests without an identity are
// rejected before reaching any handler. Unknown roles are demoted to client.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(userIDHeader)
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}

		role := Role(r.Header.Get(userRoleHeader))
		switch role {
		case RoleAdmin, RoleFulfillment, RoleClient:
		default:
			role = RoleClient
		}

		ctx := WithPrincipal(r.Context(), Principal{ID: id, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

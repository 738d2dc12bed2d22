package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAccessOrder(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		ownerID   string
		want      bool
	}{
		{"client reads own order", Principal{ID: "u1", Role: RoleClient}, "u1", true},
		{"client blocked from other order", Principal{ID: "u1", Role: RoleClient}, "u2", false},
		{"admin reads any order", Principal{ID: "a1", Role: RoleAdmin}, "u2", true},
		{"fulfillment reads any order", Principal{ID: "f1", Role: RoleFulfillment}, "u2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.principal.CanAccessOrder(tt.ownerID))
		})
	}
}

func TestMiddlewareInjectsPrincipal(t *testing.T) {
	var got Principal
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-User-Id", "u42")
	req.Header.Set("X-User-Role", "admin")
	rec := httptest.NewRecorder()

	Middleware(next).ServeHTTP(rec, req)

	require.True(t, ok)
	assert.Equal(t, Principal{ID: "u42", Role: RoleAdmin}, got)
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()

	Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareDemotesUnknownRole(t *testing.T) {
	var got Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-User-Role", "superuser")
	rec := httptest.NewRecorder()

	Middleware(next).ServeHTTP(rec, req)

	assert.Equal(t, RoleClient, got.Role)
}

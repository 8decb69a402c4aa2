package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type Keys struct {
	Public []string
	Admin  []string
}

// Role is what a presented key is allowed to do.
type Role int

const (
	RoleNone Role = iota
	RolePublic
	RoleAdmin
)

type ctxKey struct{}

type caller struct {
	key  string
	role Role
}

func readAuth(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return strings.TrimSpace(k)
	}
	// browsers cannot set headers on a websocket handshake
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("api_key")
	}
	return ""
}

func hasKey(given string, set []string) bool {
	if given == "" {
		return false
	}
	for _, k := range set {
		if subtle.ConstantTimeCompare([]byte(k), []byte(given)) == 1 {
			return true
		}
	}
	return false
}

func (k Keys) roleOf(given string) Role {
	switch {
	case hasKey(given, k.Admin):
		return RoleAdmin
	case hasKey(given, k.Public):
		return RolePublic
	default:
		return RoleNone
	}
}

// CallerKey returns the API key accepted for this request, or "".
func CallerKey(ctx context.Context) string {
	c, _ := ctx.Value(ctxKey{}).(caller)
	return c.key
}

// CallerRole returns the role resolved by RequireAny.
func CallerRole(ctx context.Context) Role {
	c, _ := ctx.Value(ctxKey{}).(caller)
	return c.role
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// RequireAny allows requests that present either a public or admin key.
// If no keys are configured, it allows all requests (handy for local dev).
func RequireAny(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Public) > 0 || len(keys.Admin) > 0
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			key := readAuth(r)
			role := keys.roleOf(key)
			if role == RoleNone {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, caller{key: key, role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin only permits requests that present an admin key. A missing
// key is 401, a valid non-admin key is 403. If no admin keys are
// configured, it allows all requests (dev).
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Admin) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := readAuth(r)
			switch keys.roleOf(key) {
			case RoleAdmin:
				next.ServeHTTP(w, r)
			case RolePublic:
				writeError(w, http.StatusForbidden, "forbidden")
			default:
				writeError(w, http.StatusUnauthorized, "unauthorized")
			}
		})
	}
}

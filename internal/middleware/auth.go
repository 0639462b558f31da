package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"quotestudio/internal/domain"
	"quotestudio/internal/identity"
)

// TokenVerifier resolves a bearer token to a principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Principal, error)
}

// ProfileLookup loads the profile used for role checks.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

type principalContextKey struct{}

// Auth rejects requests without a valid bearer token and stores the
// principal in the request context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			p, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrStoreUnavailable) {
					writeError(w, http.StatusServiceUnavailable, "store_unavailable", "session store unavailable")
					return
				}
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), principalContextKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin lets through only principals whose profile has the admin flag.
// It must run after Auth.
func RequireAdmin(profiles ProfileLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserIDFromContext(r.Context())
			if userID == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			p, err := profiles.GetByID(r.Context(), userID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				writeError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			case err != nil:
				writeError(w, http.StatusServiceUnavailable, "store_unavailable", "profile store unavailable")
				return
			case !p.IsAdmin:
				writeError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func PrincipalFromContext(ctx context.Context) *identity.Principal {
	p, _ := ctx.Value(principalContextKey{}).(*identity.Principal)
	return p
}

func UserIDFromContext(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.ID
	}
	return ""
}

// ContextWithPrincipal is used by tests and background callers.
func ContextWithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, p)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

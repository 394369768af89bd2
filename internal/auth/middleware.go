package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// CookieName carries the session token between browser and backend.
const CookieName = "token"

// TokenFromRequest extracts the raw session token from the request cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// RequireAuth rejects requests without a verifiable token: 401 when the
// cookie is absent, 403 when the token fails verification, 500 when the
// signing key is not configured. It never touches the identity store and
// never extends a token.
func RequireAuth(t Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := TokenFromRequest(r)
			if !ok {
				rejectJSON(w, http.StatusUnauthorized, "missing token")
				return
			}
			claims, err := t.Verify(raw)
			if err != nil {
				if errors.Is(err, ErrNoSigningKey) {
					rejectJSON(w, http.StatusInternalServerError, "server configuration error")
					return
				}
				rejectJSON(w, http.StatusForbidden, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when the cookie holds a verifiable token and
// continues anonymously otherwise. Only a missing signing key is surfaced,
// since that must fail closed on every token-dependent path.
func OptionalAuth(t Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := TokenFromRequest(r); ok {
				claims, err := t.Verify(raw)
				switch {
				case err == nil:
					r = r.WithContext(WithClaims(r.Context(), claims))
				case errors.Is(err, ErrNoSigningKey):
					rejectJSON(w, http.StatusInternalServerError, "server configuration error")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

package httpx

import (
	"context"
	"net/http"
	"strings"
)

const SessionCookie = "df_session"

type ctxKey int

const userIDKey ctxKey = 0

type sessionResolver interface {
	SessionUser(ctx context.Context, token string) (int64, error)
}

type Auth struct{ Sessions sessionResolver }

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Require rejects requests without a valid session.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := sessionToken(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, errBody{Error: "authentication_required"})
			return
		}
		uid, err := a.Sessions.SessionUser(r.Context(), tok)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errBody{Error: "authentication_required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

// Maybe attaches the user when a valid session is present but lets anonymous
// requests through (homepage, product pages).
func (a *Auth) Maybe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := sessionToken(r); tok != "" {
			if uid, err := a.Sessions.SessionUser(r.Context(), tok); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, uid))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user id, 0 for anonymous requests.
func UserID(r *http.Request) int64 {
	if v, ok := r.Context().Value(userIDKey).(int64); ok {
		return v
	}
	return 0
}

package srv

import (
	"context"
	"errors"
	"net/http"

	"github.com/opd-ai/bookforge/srv/auth"
	"github.com/opd-ai/bookforge/store"
)

type ctxKey int

const userKey ctxKey = iota

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the bearer token to a stored user and puts it in the
// request context. Browsers cannot set headers on websocket handshakes, so a
// "token" query parameter is accepted when the header is absent.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				header = "Bearer " + token
			}
		}
		raw, err := auth.BearerToken(header)
		if err != nil {
			s.fail(w, r, newAPIError(http.StatusUnauthorized, "Not authorized, no token", err))
			return
		}
		id, err := s.auth.ParseToken(raw)
		if err != nil {
			s.fail(w, r, newAPIError(http.StatusUnauthorized, "Not authorized, token failed", err))
			return
		}
		user, err := s.users.GetByID(r.Context(), nil, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.fail(w, r, newAPIError(http.StatusUnauthorized, "Not authorized, token failed", err))
				return
			}
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func currentUser(r *http.Request) *store.User {
	u, _ := r.Context().Value(userKey).(*store.User)
	return u
}

package http

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/log"
)

type ctxKey int

const userIDKey ctxKey = iota

// requireUser authenticates the bearer token and stores the user ID on the
// request context.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
			return
		}

		userID, err := s.tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Token rejected",
				log.FieldComponent, log.ComponentAuth,
				log.FieldError, err.Error())
			w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack", error="invalid_token"`)
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = log.WithLogger(ctx, log.FromContext(ctx).With(log.FieldUserID, userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID returns the authenticated user. Only valid behind requireUser.
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

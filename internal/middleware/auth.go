// Package middleware holds the HTTP middleware of the tablehub API: caller
// identity, request ids, request logging and rate limiting.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"tablehub/internal/domain"
)

// Auth resolves the caller's tenant id from the bearer token and stores it
// in the request context. Requests without a valid token never reach next.
func Auth(validator TokenValidator, userClaim string, logger *slog.Logger) func(http.Handler) http.Handler {
	if userClaim == "" {
		userClaim = "sub"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			claims, err := validator.Validate(r.Context(), token)
			if err != nil {
				logger.Debug("token rejected", "error", err, "request_id", RequestIDFromContext(r.Context()))
				writeUnauthorized(w, "invalid token")
				return
			}
			userID, err := claims.UserID(userClaim)
			if err != nil {
				logger.Debug("token has no usable user id", "error", err)
				writeUnauthorized(w, "token does not identify a user")
				return
			}
			ctx := domain.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", msg)
}

func writeError(w http.ResponseWriter, status int, reason, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    status,
		"reason":  reason,
		"message": msg,
	})
}

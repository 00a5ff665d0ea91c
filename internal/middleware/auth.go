package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/auth"
)

// Authenticate verifies the Authorization header through the token service
// and stores the resulting identity in the request context. Requests with
// a missing, invalid or expired credential are rejected with 401.
func Authenticate(tokens *auth.TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := tokens.Verify(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				logger.Debug("authentication rejected",
					zap.String("path", r.URL.Path), zap.Error(err))
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityCtxKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, err error) {
	message := "authentication failed"
	switch {
	case errors.Is(err, auth.ErrMissingCredential):
		message = "authorization credential is missing, please log in"
	case errors.Is(err, auth.ErrExpiredCredential):
		message = "credential has expired"
	case errors.Is(err, auth.ErrInvalidCredential):
		message = "credential is invalid"
	case errors.Is(err, auth.ErrUnknownUser):
		message = "user for this credential no longer exists"
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "authentication failed"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

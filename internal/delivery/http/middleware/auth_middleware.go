package middleware

import (
	"context"
	"net/http"

	"shopflow-backend/internal/domain"
	"shopflow-backend/pkg/utils"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid or missing token", http.StatusUnauthorized)
			return
		}

		// A partial user built from token claims avoids a DB hit on every
		// request.
		user := &domain.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware attaches the user when a valid token is present
// but lets anonymous requests through. Guest checkout depends on it.
func OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := utils.ExtractClaims(r); err == nil {
			user := &domain.User{
				ID:    claims.UserID,
				Email: claims.Email,
				Role:  claims.Role,
			}
			r = r.WithContext(context.WithValue(r.Context(), domain.UserContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

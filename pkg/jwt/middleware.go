package jwt

import (
	"net/http"
	"strings"
)

// ErrorHandler handles token validation failures.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware verifies Bearer tokens and publishes the claim set into the
// request context. Requests without an Authorization header pass through
// unauthenticated — downstream middleware decides whether the route requires
// an identity. A present-but-invalid token is always rejected.
func Middleware(service *Service, errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims := make(map[string]any)
			if err := service.Parse(tokenString, &claims); err != nil {
				errorHandler(w, r, err)
				return
			}
			if err := temporalClaims(claims).Valid(); err != nil {
				errorHandler(w, r, err)
				return
			}

			ctx := SetToken(r.Context(), tokenString)
			ctx = SetClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// temporalClaims lifts exp/nbf out of a raw claim map so the shared
// StandardClaims validation applies to map-parsed tokens too.
func temporalClaims(claims map[string]any) StandardClaims {
	var sc StandardClaims
	if exp, ok := claims["exp"].(float64); ok {
		sc.ExpiresAt = int64(exp)
	}
	if nbf, ok := claims["nbf"].(float64); ok {
		sc.NotBefore = int64(nbf)
	}
	return sc
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// jwtAuthMiddleware validates the Bearer token on every request. Health
// and metrics endpoints stay open so probes and scrapers work without
// credentials.
func (g *Gateway) jwtAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header", "")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must use Bearer scheme", "")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(g.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", "")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the JWT claims attached by the auth
// middleware, or nil when auth is disabled.
func ClaimsFromContext(ctx context.Context) jwt.MapClaims {
	claims, _ := ctx.Value(claimsContextKey).(jwt.MapClaims)
	return claims
}

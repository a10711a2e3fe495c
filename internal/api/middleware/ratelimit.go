package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit bounds a handler with a shared token bucket. Used on the
// OAuth callback so a misbehaving client cannot hammer the identity
// provider through us.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

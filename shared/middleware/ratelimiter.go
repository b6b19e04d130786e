package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/microsmart/portal/shared/errors"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/middleware/ratelimiter"
	"github.com/microsmart/portal/shared/utils"
)

// RateLimit rejects requests whose identity has exhausted its bucket.
// Requests without an identity are let through.
func RateLimit(rl *ratelimiter.KeyedLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Warn("rate limit exceeded", "path", r.URL.Path, "identity", identity)
				utils.WriteErrorAndStatusCode(w, errors.TooManyRequests("Too many attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIP extracts the client IP from RemoteAddr.
// Does NOT trust X-Real-IP or X-Forwarded-For headers.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

// GetFieldFromForm keys the limiter on a form field, e.g. the username on /login.
func GetFieldFromForm(field string) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("failed to parse form")
		}
		v := r.PostFormValue(field)
		if v == "" {
			return "", fmt.Errorf("%s field is required", field)
		}
		return field + ":" + v, nil
	}
}

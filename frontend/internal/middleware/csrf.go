package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/microsmart/portal/shared/csrf"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/validation"
)

const (
	CSRFCookieName = "portal_csrf"
	CSRFFormField  = "csrf_token"
)

type csrfContextKey struct{}

type CSRFConfig struct {
	SecureCookies bool
	// MaxFormSize caps multipart bodies (excel uploads) parsed during validation.
	MaxFormSize int64
}

// GenerateCSRFToken makes sure every visitor carries a CSRF cookie and puts
// its value in the request context for forms.
func GenerateCSRFToken(cfg CSRFConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(CSRFCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				token, err = csrf.GenerateToken()
				if err != nil {
					logger.Log.Error("failed to generate CSRF token", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.SecureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ValidateCSRFToken rejects state-changing requests whose form token does not
// match the cookie.
func ValidateCSRFToken(cfg CSRFConfig) func(http.Handler) http.Handler {
	maxForm := cfg.MaxFormSize
	if maxForm <= 0 {
		maxForm = 32 << 20
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(CSRFCookieName)
			if err != nil {
				logger.Log.Warn("CSRF cookie missing", "path", r.URL.Path)
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				if err := validation.ParseMultipart(w, r, maxForm); err != nil {
					logger.Log.Warn("failed to parse multipart form", "path", r.URL.Path, "error", err)
					http.Error(w, "File is too large or the form is invalid", http.StatusRequestEntityTooLarge)
					return
				}
			} else if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form data", http.StatusBadRequest)
				return
			}

			if !csrf.ValidateToken(cookie.Value, r.FormValue(CSRFFormField)) {
				logger.Log.Warn("CSRF token validation failed", "path", r.URL.Path)
				http.Error(w, "CSRF token invalid", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey{}).(string)
	return token
}

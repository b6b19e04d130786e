package visitor

import (
	"context"
	"net/http"

	"github.com/microsmart/portal/shared/errors"
	"github.com/microsmart/portal/shared/jwt"
	"github.com/microsmart/portal/shared/middleware"
	"github.com/microsmart/portal/shared/middleware/ratelimiter"
	"github.com/microsmart/portal/shared/utils"
)

const CookieName = "portal_visitor"

type ctxKey struct{}

// FromContext returns the visitor attached by Middleware.
func FromContext(ctx context.Context) *Visitor {
	v, _ := ctx.Value(ctxKey{}).(*Visitor)
	return v
}

func NewContext(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

type Middleware struct {
	store   *Store
	jwt     jwt.JwtService
	secure  bool
	created *ratelimiter.KeyedLimiter // per client IP, nil means unlimited
}

func NewMiddleware(store *Store, jwtService jwt.JwtService, secureCookies bool) *Middleware {
	return &Middleware{store: store, jwt: jwtService, secure: secureCookies}
}

// LimitCreation rate-limits how many new visitors one client IP may start.
// Requests carrying a live visitor cookie are never limited.
func (m *Middleware) LimitCreation(l *ratelimiter.KeyedLimiter) *Middleware {
	m.created = l
	return m
}

// Attach finds the visitor named by the signed cookie, creating one when the
// cookie is missing, invalid, or names a visitor that was swept. The cookie is
// re-signed on every request so its expiry slides with activity.
func (m *Middleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := m.lookup(r)
		if v == nil {
			if !m.mayCreate(r) {
				utils.WriteErrorAndStatusCode(w, errors.TooManyRequests("Too many new sessions, try again later"))
				return
			}
			v = m.store.Create()
		}

		token, err := m.jwt.NewToken(v.Id)
		if err != nil {
			m.store.log.Error("failed to sign visitor cookie", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(m.store.ttl.Seconds()),
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), v)))
	})
}

func (m *Middleware) lookup(r *http.Request) *Visitor {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	id, err := m.jwt.DecodeToken(cookie.Value)
	if err != nil {
		return nil
	}
	v, _ := m.store.Get(id)
	return v
}

func (m *Middleware) mayCreate(r *http.Request) bool {
	if m.created == nil {
		return true
	}
	ip, err := middleware.GetIP(r)
	if err != nil {
		return true
	}
	if !m.created.Allow(ip) {
		m.store.log.Warn("visitor creation rate limited", "ip", ip)
		return false
	}
	return true
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/microsmart/portal/frontend/internal/guard"
	"github.com/microsmart/portal/frontend/internal/middleware"
	"github.com/microsmart/portal/frontend/internal/setup"
	mw "github.com/microsmart/portal/shared/middleware"
	"github.com/microsmart/portal/shared/middleware/metrics"
	rl "github.com/microsmart/portal/shared/middleware/ratelimiter"
)

// formOverhead leaves room for the other multipart fields next to an upload.
const formOverhead = 1 << 20

// SetupRouter returns the traced portal handler.
func SetupRouter(deps *setup.Dependencies) http.Handler {
	return otelhttp.NewHandler(newMux(deps), "portal")
}

// newMux wires every page behind the visitor, CSRF and guard middleware.
// Infrastructure endpoints stay outside the guard.
func newMux(deps *setup.Dependencies) *chi.Mux {
	h := deps.Handler
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "text/html", "application/json"))
	r.Use(mw.SecurityHeadersWithCSP(deps.Public.SecureCookies, mw.PortalCSP))
	r.Use(metrics.Middleware)

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Public.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		api.Use(deps.Attach.Attach)
		api.Get("/session", h.SessionHandler)
		api.Get("/notifications", h.NotificationsHandler)
	})

	csrfCfg := middleware.CSRFConfig{
		SecureCookies: deps.Public.SecureCookies,
		MaxFormSize:   deps.Public.MaxUploadSize + formOverhead,
	}
	pageChain := []func(http.Handler) http.Handler{
		deps.Attach.Attach,
		middleware.GenerateCSRFToken(csrfCfg),
		middleware.ValidateCSRFToken(csrfCfg),
		guard.Middleware(http.HandlerFunc(h.LoadingHandler)),
	}

	// the guard decides what "/" and unknown paths lead to
	r.NotFound(chi.Chain(pageChain...).HandlerFunc(http.NotFound).ServeHTTP)
	r.MethodNotAllowed(chi.Chain(pageChain...).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}).ServeHTTP)

	loginLimiter := rl.LoginAttempts()
	loginByUser := rl.LoginAttempts()
	registerLimiter := rl.Registrations()

	r.Group(func(pages chi.Router) {
		pages.Use(pageChain...)

		pages.Get(guard.LoginPath, h.LoginGetHandler)
		pages.With(
			mw.RateLimit(loginLimiter, mw.GetIP),
			mw.RateLimit(loginByUser, mw.GetFieldFromForm("username")),
		).Post(guard.LoginPath, h.LoginPostHandler)
		pages.Get(guard.RegisterPath, h.RegisterGetHandler)
		pages.With(mw.RateLimit(registerLimiter, mw.GetIP)).Post(guard.RegisterPath, h.RegisterPostHandler)

		pages.Get("/profile", h.ProfileGetHandler)
		pages.Post("/profile", h.ProfilePostHandler)
		pages.Get("/logout", h.LogoutGetHandler)
		pages.Post("/logout", h.LogoutPostHandler)

		pages.Get(guard.AdminDashboardPath, h.AdminDashboardHandler)
		pages.Get("/admin/users", h.AdminUsersGetHandler)
		pages.Post("/admin/users", h.AdminUsersPostHandler)
		pages.Get("/admin/users/{id}", h.AdminUserGetHandler)
		pages.Post("/admin/users/{id}", h.AdminUserPostHandler)
		pages.Get("/admin/loans", h.AdminLoansHandler)
		pages.Get("/admin/loans/{id}", h.AdminLoanGetHandler)
		pages.Post("/admin/loans/{id}", h.AdminLoanPostHandler)
		pages.Get("/admin/excel", h.AdminExcelGetHandler)
		pages.Post("/admin/excel", h.AdminExcelPostHandler)
		pages.Get("/admin/excel/{id}", h.AdminAnalysisHandler)
		pages.Get("/admin/messages", h.AdminMessagesGetHandler)
		pages.Post("/admin/messages", h.AdminMessagesPostHandler)
		pages.Get("/admin/metrics", h.AdminMetricsGetHandler)
		pages.Post("/admin/metrics", h.AdminMetricsPostHandler)

		pages.Get(guard.ClientDashboardPath, h.ClientDashboardHandler)
		pages.Get("/client/loans", h.ClientLoansHandler)
		pages.Get("/client/loans/new", h.LoanNewGetHandler)
		pages.Post("/client/loans/new", h.LoanNewPostHandler)
		pages.Get("/client/loans/{id}", h.ClientLoanHandler)
		pages.Get("/client/payments", h.PaymentsGetHandler)
		pages.Post("/client/payments", h.PaymentsPostHandler)
		pages.Get("/client/messages", h.ClientMessagesHandler)
	})

	return r
}

package guard

import (
	"context"
	"net/http"

	"github.com/microsmart/portal/frontend/internal/session"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/logger"
)

// LoadingRefresh is how long the placeholder waits before asking again.
const LoadingRefresh = "1"

// Middleware applies Resolve to every request. A visitor whose session is
// still Unknown is probed first; one whose probe is already running elsewhere
// gets the loading page, which refreshes itself.
func Middleware(loading http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := visitor.FromContext(r.Context())
			if v == nil {
				logger.Log.Error("guard reached without a visitor", "path", r.URL.Path)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			snap := v.Session.Snapshot()
			if snap.State == session.StateUnknown {
				// the probe outlives this request if the browser gives up
				snap = v.Session.Probe(context.WithoutCancel(r.Context()))
			}

			res := Resolve(snap, r.URL.RequestURI())
			switch res.Outcome {
			case Loading:
				w.Header().Set("Refresh", LoadingRefresh)
				loading.ServeHTTP(w, r)
			case Redirect:
				http.Redirect(w, r, res.Location, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), snap.User)))
			}
		})
	}
}

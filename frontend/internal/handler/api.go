package handler

import (
	"net/http"

	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/notify"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/utils"
)

const loadingTemplate = "loading.html"

// LoadingHandler is served while the visitor's session is being probed.
// Notifications stay queued for the page that follows.
func (h *Handler) LoadingHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, loadingTemplate, &frontend_domain.LoadingPageData{Target: r.URL.RequestURI()})
}

type sessionResponse struct {
	State string       `json:"state"`
	User  *domain.User `json:"user,omitempty"`
}

// SessionHandler reports the visitor's session without probing it.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	snap := v.Session.Snapshot()
	utils.WriteJSON(w, http.StatusOK, sessionResponse{State: snap.State.String(), User: snap.User})
}

type notificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}

// NotificationsHandler drains the visitor's queue.
func (h *Handler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	out := notificationsResponse{Notifications: []notify.Notification{}}
	for _, n := range v.Notifications.Drain() {
		out.Notifications = append(out.Notifications, notify.Notification{Kind: n.Kind, Message: h.TextProcessor.Plain(n.Message)})
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

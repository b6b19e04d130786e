package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/microsmart/portal/frontend/internal/apiclient"
	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/guard"
	"github.com/microsmart/portal/frontend/internal/session"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/utils"
)

func (h *Handler) LoginGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "login.html", &frontend_domain.LoginPageData{
		Next: r.URL.Query().Get("next"),
	})
}

func (h *Handler) LoginPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	creds := api.LoginRequest{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	data := &frontend_domain.LoginPageData{Username: creds.Username, Next: r.FormValue("next")}

	if err := utils.Validate(creds); err != nil {
		h.renderTemplateWithError(w, r, "login.html", data, err.Error())
		return
	}

	// bad credentials come back as 401; the form shows them inline
	user, err := v.Session.Login(r.Context(), creds)
	if err != nil {
		h.renderTemplateWithError(w, r, "login.html", data, err.Error())
		return
	}

	if user.Role == domain.RoleClient {
		recordActivity(r.Context(), v.API, domain.ActivityLogin, nil)
	}
	seeOther(w, r, guard.SafeNext(data.Next))
}

func (h *Handler) RegisterGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "register.html", &frontend_domain.RegisterPageData{})
}

func (h *Handler) RegisterPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	form := api.RegisterRequest{
		Username:    strings.TrimSpace(r.FormValue("username")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Password:    r.FormValue("password"),
		FirstName:   strings.TrimSpace(r.FormValue("first_name")),
		LastName:    strings.TrimSpace(r.FormValue("last_name")),
		PhoneNumber: strings.TrimSpace(r.FormValue("phone_number")),
	}
	data := &frontend_domain.RegisterPageData{Form: form}
	data.Form.Password = ""

	if err := utils.Validate(form); err != nil {
		h.renderTemplateWithError(w, r, "register.html", data, err.Error())
		return
	}

	if _, err := v.Session.Register(r.Context(), form); err != nil {
		h.renderTemplateWithError(w, r, "register.html", data, err.Error())
		return
	}

	// registration does not log in
	h.success(r, "Registration successful. You can now log in.")
	seeOther(w, r, guard.LoginPath)
}

func (h *Handler) LogoutGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "logout.html", nil)
}

func (h *Handler) LogoutPostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	if err := v.Session.Logout(r.Context()); err != nil {
		// still logged in locally. Backend text was already queued by the API client.
		var sErr *session.Error
		if errors.As(err, &sErr) && sErr.Message == sErr.Label {
			h.failure(r, sErr.Message)
		}
		seeOther(w, r, guard.RootPath)
		return
	}
	h.success(r, "You have been logged out.")
	seeOther(w, r, guard.LoginPath)
}

// recordActivity adds an entry to the client's activity feed. Failures are
// logged and otherwise ignored.
func recordActivity(ctx context.Context, client *apiclient.APIClient, activity string, details any) {
	req := api.RecordActivityRequest{ActivityType: activity}
	if details != nil {
		raw, err := json.Marshal(details)
		if err == nil {
			req.Details = raw
		}
	}
	if err := client.RecordActivity(ctx, req); err != nil {
		logger.Log.Debug("record activity failed", "activity", activity, "error", err)
	}
}

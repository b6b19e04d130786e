package handler

import (
	"errors"
	"net/http"
	"strings"

	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/guard"
	"github.com/microsmart/portal/frontend/internal/session"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
	"github.com/microsmart/portal/shared/utils"
)

// ProfileGetHandler shows the session user. Clients get their stored
// profile from the backend, which carries no role, so the role stays the
// session's.
func (h *Handler) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	user := *guard.UserFromContext(r.Context())
	if user.Role == domain.RoleClient {
		v := visitor.FromContext(r.Context())
		profile, err := v.API.GetProfile(r.Context())
		if err != nil {
			h.apiError(w, r, err)
			return
		}
		role := user.Role
		user = *profile
		user.Role = role
	}
	h.renderTemplate(w, r, "profile.html", &frontend_domain.ProfilePageData{User: user})
}

func (h *Handler) ProfilePostHandler(w http.ResponseWriter, r *http.Request) {
	v := visitor.FromContext(r.Context())
	current := guard.UserFromContext(r.Context())

	req := api.UpdateProfileRequest{
		FirstName:   changed(r.FormValue("first_name"), current.FirstName),
		LastName:    changed(r.FormValue("last_name"), current.LastName),
		Email:       changed(r.FormValue("email"), current.Email),
		PhoneNumber: changed(r.FormValue("phone_number"), current.PhoneNumber),
	}
	if pw := r.FormValue("password"); pw != "" {
		req.Password = &pw
	}

	// show what was typed when the form comes back with an error
	typed := *current
	typed.FirstName = strings.TrimSpace(r.FormValue("first_name"))
	typed.LastName = strings.TrimSpace(r.FormValue("last_name"))
	typed.Email = strings.TrimSpace(r.FormValue("email"))
	typed.PhoneNumber = strings.TrimSpace(r.FormValue("phone_number"))
	data := &frontend_domain.ProfilePageData{User: typed}

	if req == (api.UpdateProfileRequest{}) {
		h.success(r, "Nothing to update.")
		seeOther(w, r, "/profile")
		return
	}
	if err := utils.Validate(req); err != nil {
		h.renderTemplateWithError(w, r, "profile.html", data, err.Error())
		return
	}

	user, err := v.Session.UpdateProfile(r.Context(), req)
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		seeOther(w, r, guard.LoginURL("/profile"))
		return
	case err != nil:
		if h.formError(w, r, err) {
			return
		}
		h.renderTemplateWithError(w, r, "profile.html", data, err.Error())
		return
	}

	if user.Role == domain.RoleClient {
		recordActivity(r.Context(), v.API, domain.ActivityProfileUpdate, nil)
	}
	h.success(r, "Profile updated.")
	seeOther(w, r, "/profile")
}

// changed returns a pointer to the trimmed form value when it differs from
// the current one.
func changed(formValue, current string) *string {
	v := strings.TrimSpace(formValue)
	if v == current {
		return nil
	}
	return &v
}

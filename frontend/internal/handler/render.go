package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/microsmart/portal/frontend/internal/apiclient"
	frontend_domain "github.com/microsmart/portal/frontend/internal/domain"
	"github.com/microsmart/portal/frontend/internal/guard"
	"github.com/microsmart/portal/frontend/internal/middleware"
	"github.com/microsmart/portal/frontend/internal/notify"
	"github.com/microsmart/portal/frontend/internal/visitor"
	"github.com/microsmart/portal/shared/logger"
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	h.renderTemplateStatus(w, r, http.StatusOK, name, data, "")
}

// renderTemplateWithError re-presents a form with an inline error.
func (h *Handler) renderTemplateWithError(w http.ResponseWriter, r *http.Request, name string, data any, errMsg string) {
	h.renderTemplateStatus(w, r, http.StatusUnprocessableEntity, name, data, errMsg)
}

func (h *Handler) renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any, errMsg string) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(r, errMsg, name != loadingTemplate),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// initCommonTemplateData drains the visitor's notifications when drain is set.
// A notification repeating the inline form error is dropped.
func (h *Handler) initCommonTemplateData(r *http.Request, errMsg string, drain bool) frontend_domain.CommonTemplateData {
	common := frontend_domain.CommonTemplateData{
		User:       guard.UserFromContext(r.Context()),
		CSRFToken:  middleware.CSRFTokenFromContext(r.Context()),
		Validation: h.validation,
		Path:       r.URL.Path,
		Error:      h.TextProcessor.Plain(errMsg),
	}
	if v := visitor.FromContext(r.Context()); v != nil && drain {
		for _, n := range v.Notifications.Drain() {
			msg := h.TextProcessor.Plain(n.Message)
			if msg == "" || (n.Kind == notify.KindError && msg == common.Error) {
				continue
			}
			common.Notifications = append(common.Notifications, notify.Notification{Kind: n.Kind, Message: msg})
		}
	}
	return common
}

// seeOther finishes a form post (post/redirect/get).
func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handler) success(r *http.Request, message string) {
	if v := visitor.FromContext(r.Context()); v != nil {
		v.Notifications.Success(message)
	}
}

// failure queues a notification for errors the API client did not report
// itself (validation, bad input).
func (h *Handler) failure(r *http.Request, message string) {
	if v := visitor.FromContext(r.Context()); v != nil {
		v.Notifications.Error(message)
	}
}

type errorPageData struct {
	Retry string
}

// apiError answers a request whose backend call failed. The notification is
// already queued by the API client. A 401 has reset the session, so the
// visitor is sent to log in and come back.
func (h *Handler) apiError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apiclient.KindOf(err)
	if kind == apiclient.Unauthorized {
		next := r.URL.RequestURI()
		if r.Method != http.MethodGet {
			next = r.URL.Path
		}
		seeOther(w, r, guard.LoginURL(next))
		return
	}

	status := http.StatusBadGateway
	switch kind {
	case apiclient.Forbidden:
		status = http.StatusForbidden
	case apiclient.NotFound:
		status = http.StatusNotFound
	case apiclient.NetworkUnavailable:
		status = http.StatusServiceUnavailable
	case apiclient.KindUnknown:
		status = http.StatusInternalServerError
		logger.Log.Error("unexpected handler error", "path", r.URL.Path, "error", err)
		h.failure(r, "Something went wrong.")
	}
	h.renderTemplateStatus(w, r, status, "error.html", &errorPageData{Retry: r.URL.RequestURI()}, "")
}

// formError decides between an inline error and a redirect for a failed form
// post. Only 401 leaves the page.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error) (handled bool) {
	if apiclient.KindOf(err) == apiclient.Unauthorized {
		h.apiError(w, r, err)
		return true
	}
	return false
}

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// idParam reads the {id} route segment. Ids are positive.
func idParam(r *http.Request) (int64, bool) {
	return parseId(chi.URLParam(r, "id"))
}

func parseId(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formFloat returns nil for an empty field.
func formFloat(r *http.Request, field string) (*float64, bool) {
	s := strings.TrimSpace(r.FormValue(field))
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func formInt(r *http.Request, field string) (*int, bool) {
	s := strings.TrimSpace(r.FormValue(field))
	if s == "" {
		return nil, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.failure(r, "The requested resource was not found.")
	h.renderTemplateStatus(w, r, http.StatusNotFound, "error.html", &errorPageData{Retry: r.URL.RequestURI()}, "")
}

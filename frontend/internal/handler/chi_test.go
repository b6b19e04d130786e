package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func chiContext(r *http.Request, id string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}

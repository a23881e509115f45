// Package http provides http transport for the digest read API
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cintel/internal/modkit/httpkit"
	"cintel/internal/services/api/digest/domain"
)

// Register mounts digest endpoints on the given router
func Register(r httpkit.Router, s domain.ReaderPort) {
	h := &handlers{svc: s}

	// ranked clusters for one window mode
	httpkit.Get(r, "/clusters", h.list)

	// one cluster with hydrated members
	httpkit.Get(r, "/clusters/{id}", h.get)
}

type handlers struct{ svc domain.ReaderPort }

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	return h.svc.List(r.Context(), mode(q.Get("mode")), limit)
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), mode(r.URL.Query().Get("mode")), chi.URLParam(r, "id"))
}

func mode(m string) string {
	if m == "" {
		return "rolling"
	}
	return m
}

// Package module wires the digest read API using modkit
package module

import (
	"net/http"

	modkit "cintel/internal/modkit"
	"cintel/internal/modkit/httpkit"
	str "cintel/internal/platform/strings"
	digesthttp "cintel/internal/services/api/digest/http"
	digestsvc "cintel/internal/services/api/digest/service"
	clustersdom "cintel/internal/services/clusters/domain"
	itemsdom "cintel/internal/services/items/domain"
)

// Ports exposed to other modules
type Ports struct {
	Reader *digestsvc.Service
}

// Module implements the digest read API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports any

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *digestsvc.Service
}

// New constructs the module over the snapshot and item read ports
func New(deps modkit.Deps, snaps clustersdom.SnapshotPort, items itemsdom.ReaderPort, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("digest"), modkit.WithPrefix("/digest")}, opts...)...)

	svc := digestsvc.New(snaps, items)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Reader: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		digesthttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Package module implements the items service module
package module

import (
	"cintel/internal/modkit"
	"cintel/internal/modkit/httpkit"
	"cintel/internal/services/items/domain"
	"cintel/internal/services/items/repo"
	"cintel/internal/services/items/service"
)

// Ports exposed by the items module
type Ports struct {
	Writer domain.WriterPort
	Reader domain.ReaderPort
	Cache  domain.FingerprintCachePort
}

// Module implements the items service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new items module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.PG, repo.NewPG(), service.Config{
		HardLimit:  opts.HardLimit,
		WriteChunk: opts.WriteChunk,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Writer: svc,
		Reader: svc,
		Cache:  svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "items" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}

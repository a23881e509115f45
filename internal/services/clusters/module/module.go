// Package module implements the clusters service module
package module

import (
	"cintel/internal/modkit"
	"cintel/internal/modkit/httpkit"
	"cintel/internal/services/clusters/domain"
	"cintel/internal/services/clusters/repo"
	"cintel/internal/services/clusters/service"
)

// Ports exposed by the clusters module
type Ports struct {
	Snapshots domain.SnapshotPort
}

// Module implements the clusters service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new clusters module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{deps: deps}
	m.ports = Ports{Snapshots: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "clusters" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}

// Package module implements the digest service module
package module

import (
	"context"
	"time"

	"cintel/internal/adapters/embed"
	"cintel/internal/core/clusterer"
	"cintel/internal/core/fingerprint"
	"cintel/internal/core/similarity"
	"cintel/internal/core/window"
	"cintel/internal/modkit"
	"cintel/internal/modkit/httpkit"
	clustersmod "cintel/internal/services/clusters/module"
	"cintel/internal/services/digest/domain"
	"cintel/internal/services/digest/service"
	itemsmod "cintel/internal/services/items/module"
)

// Ports exposed by the digest module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the digest service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new digest module wiring the items and clusters ports
func New(deps modkit.Deps, items itemsmod.Ports, clusters clustersmod.Ports) *Module {
	opts := FromConfig(deps.Cfg)

	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		loc = time.UTC
	}

	svc := service.New(items.Reader, items.Cache, clusters.Snapshots, service.Config{
		Window: window.Config{
			Mode:        window.Mode(opts.Mode),
			RollingDays: opts.RollingDays,
			Location:    loc,
		},
		Fingerprint: fingerprint.Config{HashSeed: opts.HashSeed},
		Similarity: similarity.Config{
			Threshold:     opts.Threshold,
			StrictLexical: opts.StrictLexical,
			TimeSlack:     opts.TimeSlack,
			TimeHalfLife:  opts.TimeHalfLife,
		},
		Clusterer: clusterer.Config{RecencyHorizon: opts.RecencyHorizon},
		Workers:   opts.Workers,
	})

	if opts.EmbedEndpoint != "" {
		svc.WithEmbedder(embed.NewOllama(context.Background(), embed.Config{
			Endpoint: opts.EmbedEndpoint,
			Model:    opts.EmbedModel,
		}))
	}
	if deps.CH != nil {
		svc.WithLedger(deps.CH)
	}

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "digest" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}

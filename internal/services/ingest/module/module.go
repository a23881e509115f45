// Package module implements the ingest service module
package module

import (
	"cintel/internal/adapters/feeds"
	"cintel/internal/adapters/ghevents"
	"cintel/internal/core/taxonomy"
	"cintel/internal/modkit"
	"cintel/internal/modkit/httpkit"
	"cintel/internal/platform/logger"
	"cintel/internal/services/ingest/domain"
	"cintel/internal/services/ingest/service"
	itemsmod "cintel/internal/services/items/module"
)

// Ports exposed by the ingest module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingest service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ingest module from its config files and the items writer
func New(deps modkit.Deps, items itemsmod.Ports) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	log := logger.Named("ingest")

	src, err := service.LoadSources(opts.SourcesPath)
	if err != nil {
		return nil, err
	}

	var cls *taxonomy.Classifier
	if opts.TaxonomyPath != "" {
		cls, err = taxonomy.Load(opts.TaxonomyPath)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn().Msg("no taxonomy file configured, items will stay unclassified")
		cls = taxonomy.Compile(taxonomy.Rules{})
	}

	var repos service.RepoPuller
	if len(src.Repos) > 0 {
		repos = ghevents.NewClient(ghevents.Options{
			TokensCSV: opts.GHTokens,
			Timeout:   opts.GHTimeout,
		})
	}

	svc := service.New(src, feeds.NewFetcher(opts.MaxExcerpt), repos, cls, items.Writer, service.Config{
		Lookback: opts.Lookback,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ingest" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}

// Package api provides the HTTP API for the application
package api

import (
	"cintel/internal/platform/config"
	"cintel/internal/platform/logger"
	phttp "cintel/internal/platform/net/http"
	"cintel/internal/platform/store"

	"cintel/internal/modkit"
	"cintel/internal/modkit/httpkit"
	"cintel/internal/modkit/module"

	apidigest "cintel/internal/services/api/digest/module"
	metamod "cintel/internal/services/api/meta/module"
	clustersmod "cintel/internal/services/clusters/module"
	itemsmod "cintel/internal/services/items/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// storage-facing modules first so their ports can feed the read surface
	items := itemsmod.New(deps)
	clusters := clustersmod.New(deps)

	itemPorts := module.MustPortsOf[itemsmod.Ports](items)
	snapPorts := module.MustPortsOf[clustersmod.Ports](clusters)

	mods := []module.Module{
		metamod.New(deps),
		items,
		clusters,
		apidigest.New(deps, snapPorts.Snapshots, itemPorts.Reader),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}

package main

import (
	"context"
	"flag"
	"os"

	"cintel/internal/modkit"
	"cintel/internal/modkit/module"
	"cintel/internal/platform/config"
	"cintel/internal/platform/logger"
	"cintel/internal/platform/store"

	ingestmod "cintel/internal/services/ingest/module"
	itemsmod "cintel/internal/services/items/module"
	itemsrepo "cintel/internal/services/items/repo"
)

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func main() {
	var (
		sources  = flag.String("sources", "", "path to the sources yaml (overrides CORE_INGEST_SOURCES)")
		taxonomy = flag.String("taxonomy", "", "path to the taxonomy yaml (overrides CORE_INGEST_TAXONOMY)")
		lookback = flag.String("lookback", "", "repo polling lookback, e.g. 24h")
	)
	flag.Parse()

	// Pass CLI flags into CORE_INGEST_* so the module can read its own config
	mustSetEnv("CORE_INGEST_SOURCES", *sources)
	mustSetEnv("CORE_INGEST_TAXONOMY", *taxonomy)
	mustSetEnv("CORE_INGEST_LOOKBACK", *lookback)

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	ctx := context.Background()
	if err := itemsrepo.EnsureSchema(ctx, st.PG); err != nil {
		l.Fatal().Err(err).Msg("items schema")
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	items := itemsmod.New(deps)
	ing, err := ingestmod.New(deps, module.MustPortsOf[itemsmod.Ports](items))
	if err != nil {
		l.Fatal().Err(err).Msg("ingest module")
	}

	module.Register(items.Name(), items.Ports())
	module.Register(ing.Name(), ing.Ports())

	rep, err := module.MustPortsOf[ingestmod.Ports](ing).Runner.RunOnce(ctx)
	if err != nil {
		l.Fatal().Err(err).Msg("ingest failed")
	}
	l.Info().
		Int("seen", rep.Seen).
		Int("inserted", rep.Inserted).
		Int("failures", rep.Failures).
		Msg("ingest done")
}

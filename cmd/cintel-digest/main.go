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

	clustersmod "cintel/internal/services/clusters/module"
	clustersrepo "cintel/internal/services/clusters/repo"
	digestmod "cintel/internal/services/digest/module"
	digestsvc "cintel/internal/services/digest/service"
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
		mode = flag.String("mode", "", "window mode: rolling, week_to_date or last_week")
		days = flag.String("days", "", "rolling window length in days")
	)
	flag.Parse()

	// Pass CLI flags into CORE_DIGEST_* so the module can read its own config
	mustSetEnv("CORE_DIGEST_MODE", *mode)
	mustSetEnv("CORE_DIGEST_ROLLING_DAYS", *days)

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "cintel",
			ClientTag:  "digest",
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
	if err := clustersrepo.EnsureSchema(ctx, st.PG); err != nil {
		l.Fatal().Err(err).Msg("clusters schema")
	}
	if st.CH != nil {
		if err := digestsvc.EnsureLedger(ctx, st.CH); err != nil {
			l.Fatal().Err(err).Msg("run ledger schema")
		}
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	items := itemsmod.New(deps)
	clusters := clustersmod.New(deps)
	dig := digestmod.New(deps,
		module.MustPortsOf[itemsmod.Ports](items),
		module.MustPortsOf[clustersmod.Ports](clusters),
	)

	module.Register(items.Name(), items.Ports())
	module.Register(clusters.Name(), clusters.Ports())
	module.Register(dig.Name(), dig.Ports())

	res, err := module.MustPortsOf[digestmod.Ports](dig).Runner.Run(ctx, *mode)
	if err != nil {
		l.Fatal().Err(err).Msg("digest failed")
	}
	l.Info().
		Str("run_id", res.RunID).
		Str("mode", res.Mode).
		Int("items", res.Items).
		Int("clusters", res.Clusters).
		Dur("elapsed", res.Elapsed).
		Msg("digest done")
}

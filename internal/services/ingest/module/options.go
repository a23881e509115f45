package module

import (
	"time"

	"cintel/internal/platform/config"
)

// Options holds configuration settings for the ingest module
type Options struct {
	SourcesPath  string
	TaxonomyPath string

	Lookback   time.Duration
	MaxExcerpt int

	GHTokens  string
	GHTimeout time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	f := cfg.Prefix("CORE_INGEST_")
	return Options{
		SourcesPath:  f.MayString("SOURCES", "config/sources.yaml"),
		TaxonomyPath: f.MayString("TAXONOMY", "config/taxonomy.yaml"),

		Lookback:   f.MayDuration("LOOKBACK", 24*time.Hour),
		MaxExcerpt: f.MayInt("MAX_EXCERPT", 1200),

		GHTokens:  f.MayString("GH_TOKENS", ""),
		GHTimeout: f.MayDuration("GH_TIMEOUT", 30*time.Second),
	}
}

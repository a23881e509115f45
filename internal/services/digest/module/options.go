package module

import (
	"time"

	"cintel/internal/platform/config"
)

// Options holds configuration settings for the digest module
type Options struct {
	Mode        string
	RollingDays int
	Timezone    string

	Threshold      float64
	StrictLexical  float64
	TimeSlack      time.Duration
	TimeHalfLife   time.Duration
	RecencyHorizon time.Duration

	HashSeed uint64
	Workers  int

	EmbedEndpoint string
	EmbedModel    string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	f := cfg.Prefix("CORE_DIGEST_")
	return Options{
		Mode:        f.MayEnum("MODE", "rolling", "rolling", "week_to_date", "last_week"),
		RollingDays: f.MayInt("ROLLING_DAYS", 7),
		Timezone:    f.MayString("TZ", "UTC"),

		Threshold:      f.MayFloat64("THRESHOLD", 0),
		StrictLexical:  f.MayFloat64("STRICT_LEXICAL", 0),
		TimeSlack:      f.MayDuration("TIME_SLACK", 0),
		TimeHalfLife:   f.MayDuration("TIME_HALF_LIFE", 0),
		RecencyHorizon: f.MayDuration("RECENCY_HORIZON", 0),

		HashSeed: uint64(f.MayInt("HASH_SEED", 0)),
		Workers:  f.MayInt("WORKERS", 4),

		EmbedEndpoint: f.MayString("EMBED_ENDPOINT", ""),
		EmbedModel:    f.MayString("EMBED_MODEL", ""),
	}
}

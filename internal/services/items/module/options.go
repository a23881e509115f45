package module

import "cintel/internal/platform/config"

// Options holds configuration settings for the items module
type Options struct {
	HardLimit  int
	WriteChunk int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	f := cfg.Prefix("CORE_ITEMS_")
	return Options{
		HardLimit:  f.MayInt("HARD_LIMIT", 5000),
		WriteChunk: f.MayInt("WRITE_CHUNK", 500),
	}
}

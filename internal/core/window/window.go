// Package window resolves digest reporting windows
//
// All window math runs in a caller-supplied location using AddDate for
// day arithmetic, so daylight saving transitions shift the wall-clock
// boundary instead of drifting it by an hour
package window

import (
	"time"

	perr "cintel/internal/platform/errors"
)

// Mode names a window policy
type Mode string

const (
	// ModeRolling covers the trailing N days ending now
	ModeRolling Mode = "rolling"

	// ModeWeekToDate covers Monday 00:00 of the current week through now
	ModeWeekToDate Mode = "week_to_date"

	// ModeLastWeek covers the previous Monday 00:00 through Sunday 23:59:59
	ModeLastWeek Mode = "last_week"
)

// Valid reports whether m names a known policy
func (m Mode) Valid() bool {
	switch m {
	case ModeRolling, ModeWeekToDate, ModeLastWeek:
		return true
	}
	return false
}

// Window is a half-open-ish reporting interval; Contains treats End as
// inclusive because last_week ends on a wall-clock second
type Window struct {
	Mode  Mode
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// Config pins the policy inputs
type Config struct {
	// Mode selects the window policy
	Mode Mode

	// RollingDays is the trailing span for ModeRolling
	RollingDays int

	// Location is the timezone week boundaries are computed in
	Location *time.Location
}

// WithDefaults fills zero fields
func (c Config) WithDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeRolling
	}
	if c.RollingDays <= 0 {
		c.RollingDays = 7
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}

// Resolve computes the window for cfg at the reference instant now
func Resolve(cfg Config, now time.Time) (Window, error) {
	cfg = cfg.WithDefaults()
	if !cfg.Mode.Valid() {
		return Window{}, perr.InvalidArgf("unknown window mode %q", cfg.Mode)
	}

	local := now.In(cfg.Location)

	switch cfg.Mode {
	case ModeRolling:
		return Window{
			Mode:  cfg.Mode,
			Start: local.AddDate(0, 0, -cfg.RollingDays),
			End:   local,
		}, nil

	case ModeWeekToDate:
		return Window{
			Mode:  cfg.Mode,
			Start: weekStart(local),
			End:   local,
		}, nil

	default: // ModeLastWeek
		thisMonday := weekStart(local)
		lastMonday := thisMonday.AddDate(0, 0, -7)
		return Window{
			Mode:  cfg.Mode,
			Start: lastMonday,
			End:   thisMonday.Add(-time.Second),
		}, nil
	}
}

// weekStart is Monday 00:00 of ts's week in ts's location
func weekStart(ts time.Time) time.Time {
	// Weekday puts Sunday at 0; shift so Monday offsets by 0..6
	back := (int(ts.Weekday()) + 6) % 7
	day := ts.AddDate(0, 0, -back)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, ts.Location())
}

// Package service implements the ingest pass
//
// One pass pulls every configured feed and repository, normalizes and
// classifies the results, and upserts them. Source failures are logged
// and counted; they never abort the rest of the pass
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cintel/internal/adapters/feeds"
	"cintel/internal/adapters/ghevents"
	"cintel/internal/core/intel"
	"cintel/internal/core/taxonomy"
	"cintel/internal/platform/logger"
	"cintel/internal/services/ingest/domain"
	itemsdom "cintel/internal/services/items/domain"
)

// Config for the ingest service
type Config struct {
	// Lookback bounds how far back commit polling reaches
	Lookback time.Duration

	// Weights maps sources to authority, zero value uses the defaults
	Weights intel.Weights
}

// Fetcher pulls one feed; satisfied by *feeds.Fetcher
type Fetcher interface {
	Fetch(ctx context.Context, f feeds.Feed) ([]intel.Item, error)
}

// RepoPuller pulls repository activity; satisfied by *ghevents.Client
type RepoPuller interface {
	ListCommits(ctx context.Context, owner, repo string, since time.Time, perPage int, etag string) ([]ghevents.Commit, string, bool, error)
	ListPulls(ctx context.Context, owner, repo string, perPage int, etag string) ([]ghevents.Pull, string, bool, error)
	ListReleases(ctx context.Context, owner, repo string, perPage int, etag string) ([]ghevents.Release, string, bool, error)
}

// Service implements domain.RunnerPort
type Service struct {
	Sources    domain.Sources
	Feeds      Fetcher
	Repos      RepoPuller
	Classifier *taxonomy.Classifier
	Writer     itemsdom.WriterPort
	Cfg        Config
}

// New constructs an ingest service
func New(src domain.Sources, fetcher Fetcher, repos RepoPuller, cls *taxonomy.Classifier, writer itemsdom.WriterPort, cfg Config) *Service {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if len(cfg.Weights) == 0 {
		cfg.Weights = intel.DefaultWeights()
	}
	return &Service{
		Sources:    src,
		Feeds:      fetcher,
		Repos:      repos,
		Classifier: cls,
		Writer:     writer,
		Cfg:        cfg,
	}
}

// RunOnce implements domain.RunnerPort
func (s *Service) RunOnce(ctx context.Context) (domain.Report, error) {
	var rep domain.Report
	log := logger.C(ctx)

	var batch []intel.Item

	for _, f := range s.Sources.Feeds {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		items, err := s.Feeds.Fetch(ctx, f)
		if err != nil {
			log.Warn().Err(err).Str("feed", f.Name).Msg("feed fetch failed")
			rep.Failures++
			continue
		}
		rep.FeedsFetched++
		host := feeds.Host(f.URL)
		for _, it := range items {
			out, drop := s.classify(it, host)
			if drop {
				rep.Dropped++
				continue
			}
			batch = append(batch, out)
		}
	}

	if s.Repos != nil {
		for _, rw := range s.Sources.Repos {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			items, err := s.pullRepo(ctx, rw)
			if err != nil {
				log.Warn().Err(err).Str("repo", rw.Owner+"/"+rw.Name).Msg("repo pull failed")
				rep.Failures++
				continue
			}
			rep.ReposFetched++
			for _, it := range items {
				out, drop := s.classify(it, "")
				if drop {
					rep.Dropped++
					continue
				}
				batch = append(batch, out)
			}
		}
	}

	rep.Seen = len(batch)
	if len(batch) > 0 {
		n, err := s.Writer.UpsertBatch(ctx, batch)
		if err != nil {
			return rep, err
		}
		rep.Inserted = n
	}

	log.Info().
		Int("feeds", rep.FeedsFetched).
		Int("repos", rep.ReposFetched).
		Int("seen", rep.Seen).
		Int("inserted", rep.Inserted).
		Int("dropped", rep.Dropped).
		Int("failures", rep.Failures).
		Msg("ingest pass finished")
	return rep, nil
}

// classify fills project, tags and authority on a raw item
// the second return is true when the item matched a noise rule
func (s *Service) classify(it intel.Item, host string) (intel.Item, bool) {
	if s.Classifier != nil {
		res := s.Classifier.Classify(it.Title+" "+it.BodyExcerpt, host)
		if res.Noise {
			return intel.Item{}, true
		}
		if res.Project != "" {
			it.Project = res.Project
		}
		it.Tags = append(it.Tags, res.Topics...)
		it.Tags = append(it.Tags, res.Arches...)
		if res.HighPriority {
			it.Tags = append(it.Tags, "priority:high")
		}
	}
	it.Authority = s.Cfg.Weights.For(it.Source)
	return it, false
}

// pullRepo converts one repository's activity to items
func (s *Service) pullRepo(ctx context.Context, rw domain.RepoWatch) ([]intel.Item, error) {
	full := rw.Owner + "/" + rw.Name
	var out []intel.Item

	if rw.Commits {
		commits, _, _, err := s.Repos.ListCommits(ctx, rw.Owner, rw.Name, time.Now().Add(-s.Cfg.Lookback), 0, "")
		if err != nil {
			return nil, err
		}
		for _, c := range commits {
			title := c.Title()
			if title == "" {
				continue
			}
			out = append(out, intel.Item{
				ID:          feeds.EntryID("github:"+full+":commits", c.SHA),
				Source:      intel.SourceRepoCommits,
				Project:     rw.Project,
				Title:       title,
				BodyExcerpt: feeds.Excerpt(c.Body(), 1200),
				URL:         c.HTMLURL,
				PublishedAt: c.Commit.Committer.Date.UTC(),
			})
		}
	}

	if rw.Pulls {
		pulls, _, _, err := s.Repos.ListPulls(ctx, rw.Owner, rw.Name, 0, "")
		if err != nil {
			return nil, err
		}
		cutoff := time.Now().Add(-s.Cfg.Lookback)
		for _, p := range pulls {
			if p.UpdatedAt.Before(cutoff) || p.Title == "" {
				continue
			}
			out = append(out, intel.Item{
				ID:          feeds.EntryID("github:"+full+":pulls", fmt.Sprintf("%d", p.Number)),
				Source:      intel.SourceRepoPRs,
				Project:     rw.Project,
				Title:       p.Title,
				BodyExcerpt: feeds.Excerpt(p.Body, 1200),
				URL:         p.HTMLURL,
				PublishedAt: p.UpdatedAt.UTC(),
			})
		}
	}

	if rw.Releases {
		rels, _, _, err := s.Repos.ListReleases(ctx, rw.Owner, rw.Name, 0, "")
		if err != nil {
			return nil, err
		}
		for _, r := range rels {
			if r.Draft {
				continue
			}
			title := r.Name
			if title == "" {
				title = strings.TrimSpace(full + " " + r.TagName)
			}
			out = append(out, intel.Item{
				ID:          feeds.EntryID("github:"+full+":releases", r.TagName),
				Source:      intel.SourceRelease,
				Project:     rw.Project,
				Title:       title,
				BodyExcerpt: feeds.Excerpt(r.Body, 1200),
				URL:         r.HTMLURL,
				PublishedAt: r.PublishedAt.UTC(),
			})
		}
	}
	return out, nil
}

// Package domain holds the ingest service contracts
package domain

import "cintel/internal/adapters/feeds"

// RepoWatch names one GitHub repository to poll
type RepoWatch struct {
	// Owner and Name identify the repository
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`

	// Project labels every item from this repository
	Project string `yaml:"project"`

	// Commits, Pulls and Releases select what to ingest
	Commits  bool `yaml:"commits"`
	Pulls    bool `yaml:"pulls"`
	Releases bool `yaml:"releases"`
}

// Sources is the on-disk subscription document
type Sources struct {
	Feeds []feeds.Feed `yaml:"feeds"`
	Repos []RepoWatch  `yaml:"repos"`
}

// Report summarizes one ingest pass
type Report struct {
	// FeedsFetched and ReposFetched count successful source pulls
	FeedsFetched int
	ReposFetched int

	// Seen is how many items the sources produced
	Seen int

	// Inserted is how many were new to the store
	Inserted int

	// Dropped counts items discarded by taxonomy noise rules
	Dropped int

	// Failures counts sources that errored; the pass continues past them
	Failures int
}

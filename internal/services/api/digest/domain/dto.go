// Package domain holds DTOs for the digest read API
package domain

// ItemView is the API shape of one stored item
type ItemView struct {
	ID          string   `json:"id" example:"a1b2c3d4e5f60718293a4b5c"`
	Source      string   `json:"source" example:"repo_commits"`
	Project     string   `json:"project" example:"LLVM"`
	Title       string   `json:"title" example:"[LV] Support masked loads of scalable vectors"`
	URL         string   `json:"url,omitempty" example:"https://github.com/llvm/llvm-project/commit/abc123"`
	PublishedAt string   `json:"published_at" example:"2026-08-20T14:03:00Z"`
	Tags        []string `json:"tags,omitempty" example:"vectorization"`
}

// ClusterSummary is one ranked cluster without its member bodies
type ClusterSummary struct {
	ID        string   `json:"id" example:"c_9f8e7d6c5b4a3f2e"`
	Project   string   `json:"project" example:"LLVM"`
	Score     float64  `json:"score" example:"3.21"`
	Size      int      `json:"size" example:"4"`
	FirstSeen string   `json:"first_seen" example:"2026-08-19T08:00:00Z"`
	LastSeen  string   `json:"last_seen" example:"2026-08-21T17:30:00Z"`
	Exemplar  ItemView `json:"exemplar"`
}

// ClusterDetail is one cluster with every member hydrated
type ClusterDetail struct {
	ClusterSummary
	Members []ItemView `json:"members"`
}

// SnapshotView describes the snapshot a listing came from
type SnapshotView struct {
	Mode        string `json:"mode" example:"rolling"`
	WindowStart string `json:"window_start" example:"2026-08-14T00:00:00Z"`
	WindowEnd   string `json:"window_end" example:"2026-08-21T00:00:00Z"`
	RunID       string `json:"run_id" example:"0b7e4a52-1f63-4c1e-9a0d-2f3b4c5d6e7f"`
	Clusters    int    `json:"clusters" example:"37"`
	CreatedAt   string `json:"created_at" example:"2026-08-21T00:05:12Z"`
}

// ListOutput is the cluster listing payload
type ListOutput struct {
	Snapshot SnapshotView     `json:"snapshot"`
	Clusters []ClusterSummary `json:"clusters"`
}

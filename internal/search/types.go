// Package search implements Search & Candidate Selection (spec.md §4.4):
// gather context, query indexers, filter to the episode being sought,
// annotate and sort candidates, run each through the Decision Engine, and
// return the ones worth downloading.
package search

import (
	"context"
	"time"

	"github.com/slipstream/slipstream/internal/decision"
)

// Release is a single indexer search result, trimmed to the fields the
// Decision Engine and filtering steps need.
type Release struct {
	Title       string
	Size        int64
	Seeders     int
	InfoHash    string
	DownloadURL string
	PublishDate time.Time
	IsSeadex    bool
}

// Candidate pairs a Release with the parsed filename and the decision made
// about it.
type Candidate struct {
	Release Release
	Episode float64
	Season  *int
	Group   string
	Action  decision.Action
}

// IndexerClient is the narrow seam this package queries for raw results,
// satisfied by internal/indexer/nyaorss and internal/indexer/mock.
type IndexerClient interface {
	Search(ctx context.Context, query string) ([]Release, error)
}

// Package mock implements search.IndexerClient with canned releases, for
// developer mode and tests where hitting a real indexer isn't worth it.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/slipstream/slipstream/internal/search"
)

// Client returns a small, deterministic set of releases for any query.
type Client struct {
	// Seeders is the seeder count stamped on every generated release.
	Seeders int
}

// New creates a mock indexer Client with a reasonable default seeder count.
func New() *Client {
	return &Client{Seeders: 50}
}

// Search implements search.IndexerClient.
func (c *Client) Search(ctx context.Context, query string) ([]search.Release, error) {
	now := time.Now().UTC()
	releases := make([]search.Release, 0, 2)
	for i, group := range []string{"SubsPlease", "Judas"} {
		releases = append(releases, search.Release{
			Title:       fmt.Sprintf("[%s] %s - 01 [1080p]", group, query),
			Size:        700 * (1 << 20),
			Seeders:     c.Seeders - i*10,
			InfoHash:    fmt.Sprintf("%040d", i+1),
			DownloadURL: fmt.Sprintf("magnet:?xt=urn:btih:%040d&dn=%s", i+1, query),
			PublishDate: now,
		})
	}
	return releases, nil
}

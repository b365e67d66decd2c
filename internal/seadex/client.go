// Package seadex implements a thin client for the SeaDex release
// recommender (spec.md §6), supplying the `is_seadex` annotation Search &
// Candidate Selection and the Auto-Downloader's FINISHED-title batch path
// both depend on. SeaDex has no API-surface overlap with the teacher's
// general-purpose TV/movie metadata providers, and no library in the pack
// targets a seadex-shaped API, so this is a direct net/http JSON client
// rather than an adapted teacher dependency (see DESIGN.md).
package seadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/slipstream/slipstream/internal/store"
)

// Client queries releases.moe's public API for a title's best fansub
// release, keyed by AniList ID.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client against baseURL (e.g. "https://releases.moe/api")
// with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// entryResponse mirrors the subset of releases.moe's /collections/entries
// response this client needs.
type entryResponse struct {
	Items []entry `json:"items"`
}

type entry struct {
	TheoreticalBest string         `json:"theoreticalBest"`
	Trs             []torrentEntry `json:"trs"`
}

type torrentEntry struct {
	ReleaseGroup string `json:"releaseGroup"`
	URL          string `json:"url"`
	InfoHash     string `json:"infoHash"`
	DualAudio    bool   `json:"dualAudio"`
}

// ErrNotFound is returned when SeaDex has no entry for the given AniList ID.
var ErrNotFound = fmt.Errorf("seadex: no entry for title")

// GetRecommendation fetches the current best-release recommendation for
// anilistID and converts it into a store.SeaDexCache row stamped with the
// current time, ready for UpsertSeaDexCache.
func (c *Client) GetRecommendation(ctx context.Context, animeID int64, anilistID int) (store.SeaDexCache, error) {
	u := fmt.Sprintf("%s/collections/entries?filter=%s", c.baseURL, url.QueryEscape(fmt.Sprintf("alID=%d", anilistID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return store.SeaDexCache{}, fmt.Errorf("seadex: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return store.SeaDexCache{}, fmt.Errorf("seadex: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return store.SeaDexCache{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return store.SeaDexCache{}, fmt.Errorf("seadex: unexpected status %d", resp.StatusCode)
	}

	var body entryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return store.SeaDexCache{}, fmt.Errorf("seadex: decode response: %w", err)
	}
	if len(body.Items) == 0 {
		return store.SeaDexCache{}, ErrNotFound
	}

	item := body.Items[0]
	cache := store.SeaDexCache{
		AnimeID:   animeID,
		FetchedAt: time.Now().UTC(),
	}

	groupSet := map[string]bool{}
	for _, tr := range item.Trs {
		release := store.SeaDexRelease{
			ReleaseGroup: tr.ReleaseGroup,
			InfoHash:     tr.InfoHash,
			URL:          tr.URL,
			DualAudio:    tr.DualAudio,
		}
		cache.Releases = append(cache.Releases, release)
		if !groupSet[tr.ReleaseGroup] {
			groupSet[tr.ReleaseGroup] = true
			cache.Groups = append(cache.Groups, tr.ReleaseGroup)
		}
		if tr.URL == item.TheoreticalBest {
			best := release
			cache.BestRelease = &best
		}
	}
	if cache.BestRelease == nil && len(cache.Releases) > 0 {
		cache.BestRelease = &cache.Releases[0]
	}

	return cache, nil
}

package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/slipstream/slipstream/internal/decision"
	"github.com/slipstream/slipstream/internal/parser"
	"github.com/slipstream/slipstream/internal/quality"
	"github.com/slipstream/slipstream/internal/store"
)

// defaultCacheTTL is the "short TTL" spec.md §4.4 step 10 calls for: long
// enough to absorb the repeat queries a batch search generates for the
// same title, short enough that a feed refresh is never stale for long.
const defaultCacheTTL = 2 * time.Minute

// Selector runs Search & Candidate Selection against one indexer and the
// catalogue store.
type Selector struct {
	store   *store.Store
	indexer IndexerClient
	cache   *resultCache
}

// NewSelector creates a Selector with the default cache TTL.
func NewSelector(st *store.Store, indexer IndexerClient) *Selector {
	return &Selector{store: st, indexer: indexer, cache: newResultCache(defaultCacheTTL)}
}

// Select implements spec.md §4.4's ten-step algorithm for a single
// (anime, episode) target and returns candidates sorted by
// should_download-desc, seeders-desc.
func (s *Selector) Select(ctx context.Context, animeID int64, episodeNumber int, season int) ([]Candidate, error) {
	// Step 1: context gathering.
	title, err := s.store.GetAnime(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("search: gather context: %w", err)
	}
	if title.QualityProfileID == nil {
		return nil, fmt.Errorf("search: anime %d has no quality profile assigned", animeID)
	}
	profile, err := s.store.GetQualityProfile(ctx, *title.QualityProfileID)
	if err != nil {
		return nil, fmt.Errorf("search: load quality profile: %w", err)
	}
	rules, err := s.store.GetReleaseProfileRules(ctx, *title.QualityProfileID)
	if err != nil {
		return nil, fmt.Errorf("search: load release profile rules: %w", err)
	}

	var current *decision.Current
	statuses, err := s.store.GetEpisodeStatuses(ctx, animeID)
	if err != nil {
		return nil, fmt.Errorf("search: load episode statuses: %w", err)
	}
	for _, es := range statuses {
		if es.EpisodeNumber == episodeNumber && !es.IsMissing() {
			q := quality.Unknown
			if es.QualityID != nil {
				q = quality.ByID(*es.QualityID)
			}
			current = &decision.Current{Quality: q, IsSeadex: es.IsSeadex}
			break
		}
	}

	seadexCache, err := s.store.GetSeaDexCache(ctx, animeID)
	seadexKnown := err == nil

	// Step 2: indexer query, through the short-TTL cache.
	query := s.queryFor(title)
	releases, cached := s.cache.get(query)
	if !cached {
		releases, err = s.indexer.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search: indexer query: %w", err)
		}
		s.cache.set(query, releases)
	}

	type annotated struct {
		release Release
		parsed  parser.ParsedRelease
	}
	var matched []annotated

	for _, r := range releases {
		parsed, err := parser.Parse(r.Title)
		if err != nil {
			continue
		}

		// Step 3: season filter.
		if parsed.Season != nil && *parsed.Season != season {
			continue
		}

		// Step 4: episode filter, ±0.1 to tolerate float rounding in
		// half-episode releases (e.g. "06.5").
		if diff := parsed.EpisodeNumber - float64(episodeNumber); diff < -0.1 || diff > 0.1 {
			continue
		}

		// Step 5: is_seadex annotation against the anime's SeaDex cache.
		r.IsSeadex = seadexKnown && releaseIsSeadex(r, parsed, seadexCache)

		matched = append(matched, annotated{release: r, parsed: parsed})
	}

	// Step 6: sort by is_seadex desc, seeders desc.
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].release.IsSeadex != matched[j].release.IsSeadex {
			return matched[i].release.IsSeadex
		}
		return matched[i].release.Seeders > matched[j].release.Seeders
	})

	// Step 7: per-episode dedupe + blocklist filter.
	seen := make(map[string]bool)
	var candidates []Candidate
	for _, a := range matched {
		key := strings.ToLower(a.release.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		if a.release.InfoHash != "" {
			blocked, err := s.store.IsBlocked(ctx, a.release.InfoHash)
			if err != nil {
				return nil, fmt.Errorf("search: blocklist check: %w", err)
			}
			if blocked {
				continue
			}
		}

		// Step 8: Decision Engine evaluation.
		action := decision.Decide(
			toQualityProfile(profile),
			rules,
			current,
			decision.Candidate{Title: a.release.Title, Size: sizePtr(a.release.Size), IsSeadex: a.release.IsSeadex},
			a.parsed.Quality,
		)

		candidates = append(candidates, Candidate{
			Release: a.release,
			Episode: a.parsed.EpisodeNumber,
			Season:  a.parsed.Season,
			Group:   a.parsed.Group,
			Action:  action,
		})
	}

	// Step 9: final sort by should_download desc, seeders desc.
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := decision.ShouldDownload(candidates[i].Action), decision.ShouldDownload(candidates[j].Action)
		if si != sj {
			return si
		}
		return candidates[i].Release.Seeders > candidates[j].Release.Seeders
	})

	return candidates, nil
}

func (s *Selector) queryFor(title store.Title) string {
	if title.RomajiTitle != "" {
		return title.RomajiTitle
	}
	return title.EnglishTitle
}

func releaseIsSeadex(r Release, parsed parser.ParsedRelease, cache store.SeaDexCache) bool {
	if cache.BestRelease != nil && strings.EqualFold(cache.BestRelease.InfoHash, r.InfoHash) {
		return true
	}
	for _, group := range cache.Groups {
		if strings.EqualFold(group, parsed.Group) {
			return true
		}
	}
	return false
}

func toQualityProfile(p store.QualityProfile) quality.Profile {
	allowed := make(map[string]bool, len(p.AllowedQualityIDs))
	for _, id := range p.AllowedQualityIDs {
		allowed[id] = true
	}
	return quality.Profile{
		ID:               p.ID,
		Name:             p.Name,
		Cutoff:           quality.ByID(p.CutoffQualityID),
		UpgradeAllowed:   p.UpgradeAllowed,
		SeadexPreferred:  p.SeadexPreferred,
		MinSize:          p.MinSize,
		MaxSize:          p.MaxSize,
		AllowedQualities: allowed,
	}
}

func sizePtr(n int64) *int64 {
	if n == 0 {
		return nil
	}
	return &n
}

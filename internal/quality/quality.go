// Package quality defines the fixed Quality rank table and the
// QualityProfile acceptability/upgrade rules (spec.md Glossary, §4.3).
//
// Unlike the ranking convention this package's teacher used (higher
// Weight = better), rank here is ascending: smaller rank is better.
package quality

// Quality is an ordered value (source, resolution, rank). Smaller Rank is
// better; Remux 2160p = 1 is the best rank, Unknown = 99 is the worst.
type Quality struct {
	ID         string
	Name       string
	Source     string
	Resolution string
	Rank       int
}

// MeetsCutoff reports whether q is at least as good as cutoff (rank-wise).
func (q Quality) MeetsCutoff(cutoff Quality) bool {
	return q.Rank <= cutoff.Rank
}

// Unknown is the sentinel quality assigned when a release quality cannot be
// determined, ranked last per the Glossary.
var Unknown = Quality{ID: "unknown", Name: "Unknown", Rank: 99}

// Table is the fixed rank table from spec.md's Glossary, in increasing
// (better-to-worse) rank order.
var Table = []Quality{
	{ID: "remux-2160p", Name: "Remux 2160p", Source: "Remux", Resolution: "2160p", Rank: 1},
	{ID: "bluray-2160p", Name: "BluRay 2160p", Source: "BluRay", Resolution: "2160p", Rank: 2},
	{ID: "webdl-2160p", Name: "WEB-DL 2160p", Source: "WEB-DL", Resolution: "2160p", Rank: 3},
	{ID: "webrip-2160p", Name: "WEBRip 2160p", Source: "WEBRip", Resolution: "2160p", Rank: 4},
	{ID: "remux-1080p", Name: "Remux 1080p", Source: "Remux", Resolution: "1080p", Rank: 5},
	{ID: "bluray-1080p", Name: "BluRay 1080p", Source: "BluRay", Resolution: "1080p", Rank: 6},
	{ID: "webdl-1080p", Name: "WEB-DL 1080p", Source: "WEB-DL", Resolution: "1080p", Rank: 7},
	{ID: "webrip-1080p", Name: "WEBRip 1080p", Source: "WEBRip", Resolution: "1080p", Rank: 8},
	{ID: "bluray-720p", Name: "BluRay 720p", Source: "BluRay", Resolution: "720p", Rank: 9},
	{ID: "webdl-720p", Name: "WEB-DL 720p", Source: "WEB-DL", Resolution: "720p", Rank: 10},
	{ID: "webrip-720p", Name: "WEBRip 720p", Source: "WEBRip", Resolution: "720p", Rank: 11},
	{ID: "hdtv-1080p", Name: "HDTV 1080p", Source: "HDTV", Resolution: "1080p", Rank: 12},
	{ID: "hdtv-720p", Name: "HDTV 720p", Source: "HDTV", Resolution: "720p", Rank: 13},
	{ID: "dvd-576p", Name: "DVD 576p", Source: "DVD", Resolution: "576p", Rank: 14},
	{ID: "sdtv-480p", Name: "SDTV 480p", Source: "SDTV", Resolution: "480p", Rank: 15},
	Unknown,
}

var byID map[string]Quality

func init() {
	byID = make(map[string]Quality, len(Table))
	for _, q := range Table {
		byID[q.ID] = q
	}
}

// ByID looks up a quality by its stable ID, falling back to Unknown.
func ByID(id string) Quality {
	if q, ok := byID[id]; ok {
		return q
	}
	return Unknown
}

// FromSourceResolution maps a parsed (source, resolution) pair onto the
// fixed rank table, per spec.md §4.2 step 7.
func FromSourceResolution(source, resolution string) Quality {
	for _, q := range Table {
		if q.Source == source && q.Resolution == resolution {
			return q
		}
	}
	return Unknown
}

// Profile governs which qualities are acceptable for a title and when an
// existing download may be upgraded. Mirrors store.QualityProfile but with
// resolved Quality values instead of bare IDs, for use by the Decision
// Engine without a Store round-trip per candidate.
type Profile struct {
	ID               int64
	Name             string
	Cutoff           Quality
	UpgradeAllowed   bool
	SeadexPreferred  bool
	MinSize          *int64
	MaxSize          *int64
	AllowedQualities map[string]bool
}

// Allows reports whether a quality ID is in the profile's allowed set.
func (p Profile) Allows(qualityID string) bool {
	return p.AllowedQualities[qualityID]
}

// SizeInBand reports whether size falls within the profile's configured
// min/max band, or true if no band is configured.
func (p Profile) SizeInBand(size *int64) bool {
	if size == nil {
		return true
	}
	if p.MinSize != nil && *size < *p.MinSize {
		return false
	}
	if p.MaxSize != nil && *size > *p.MaxSize {
		return false
	}
	return true
}

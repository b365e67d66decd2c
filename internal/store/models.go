// Package store implements the Catalogue Store: durable state for titles,
// episode status, download history, blocklist, recycle bin, quality
// profiles, release-profile rules, RSS feeds, the seadex cache, and logs.
package store

import "time"

// Title is a tracked series. Its ID is the upstream catalogue's integer ID;
// no local-ID translation table exists on purpose.
type Title struct {
	ID               int64
	RomajiTitle      string
	EnglishTitle     string
	NativeTitle      string
	Format           string
	EpisodeCount     *int
	Status           string
	QualityProfileID *int64
	ReleaseProfileIDs []int64
	Monitored        bool
	Path             string
	CoverImage       string
	BannerImage      string
	Description      string
	AddedAt          time.Time
}

// MediaInfo is the probed technical detail of an imported file.
type MediaInfo struct {
	Resolution  string
	Codec       string
	AudioCodecs []string
	Duration    int
}

// EpisodeStatus tracks the on-disk state of one episode of one title.
type EpisodeStatus struct {
	AnimeID       int64
	EpisodeNumber int
	Season        int
	Monitored     bool
	QualityID     *string
	IsSeadex      bool
	FilePath      string
	FileSize      *int64
	DownloadedAt  *time.Time
	MediaInfo     *MediaInfo
}

// IsMissing reports whether the episode is monitored with no file on disk.
func (e EpisodeStatus) IsMissing() bool {
	return e.Monitored && e.FilePath == ""
}

// EpisodeMetadata is descriptive, read-only-outside-the-refresh-job data
// about one episode, fetched from an episode-metadata provider.
type EpisodeMetadata struct {
	AnimeID       int64
	EpisodeNumber int
	Title         string
	TitleJapanese string
	Aired         *time.Time
	Filler        bool
	Recap         bool
	FetchedAt     time.Time
}

// DownloadHistory is an append-mostly ledger of queued downloads.
// EpisodeNumber is real-valued so that special episodes (6.5) and the
// batch sentinel (-1, see Open Question in spec.md §9) both fit.
type DownloadHistory struct {
	ID            int64
	AnimeID       int64
	Filename      string
	EpisodeNumber float64
	Group         string
	InfoHash      string
	DownloadDate  time.Time
	Imported      bool
}

// EpisodeNumberTruncated implements the spec's
// episode_number_truncated(r) := floor(r) rule.
func (h DownloadHistory) EpisodeNumberTruncated() int {
	return truncateEpisode(h.EpisodeNumber)
}

func truncateEpisode(r float64) int {
	n := int(r)
	if r < 0 && float64(n) != r {
		n--
	}
	return n
}

// IsBatch reports whether this history row is the batch marker described in
// spec.md §9 (episode_number = -1 for a FINISHED-title multi-episode queue).
func (h DownloadHistory) IsBatch() bool {
	return h.EpisodeNumber == -1
}

// Blocklist rejects any candidate whose info hash matches, silently.
type Blocklist struct {
	InfoHash  string
	Reason    string
	CreatedAt time.Time
}

// RecycleBin records a file moved aside instead of deleted outright, so an
// upgrade or a mistaken import can be undone or GC'd after N days.
type RecycleBin struct {
	ID            int64
	OriginalPath  string
	RecycledPath  string
	AnimeID       int64
	EpisodeNumber int
	QualityID     *string
	FileSize      *int64
	DeletedAt     time.Time
	Reason        string
}

// QualityProfile governs which qualities are acceptable and when an
// existing download may be upgraded.
type QualityProfile struct {
	ID               int64
	Name             string
	CutoffQualityID  string
	UpgradeAllowed   bool
	SeadexPreferred  bool
	MinSize          *int64
	MaxSize          *int64
	AllowedQualityIDs []string
}

// RuleType enumerates release-profile rule kinds.
type RuleType string

const (
	RuleMustContain    RuleType = "must_contain"
	RuleMustNotContain RuleType = "must_not_contain"
	RulePreferred      RuleType = "preferred"
)

// ReleaseProfileRule is a single term-matching rule attached to a profile.
type ReleaseProfileRule struct {
	ID        int64
	ProfileID int64
	Term      string
	Score     int
	RuleType  RuleType
}

// RssFeed is a per-title subscribed RSS feed with a dedupe cursor.
type RssFeed struct {
	ID            int64
	AnimeID       int64
	URL           string
	Name          string
	Enabled       bool
	LastChecked   *time.Time
	LastItemHash  string
}

// SeaDexRelease is one release recommended by the external recommender.
type SeaDexRelease struct {
	ReleaseGroup string
	InfoHash     string
	URL          string
	DualAudio    bool
}

// SeaDexCache is the 24h-fresh cache of a title's seadex recommendation.
type SeaDexCache struct {
	AnimeID      int64
	Groups       []string
	BestRelease  *SeaDexRelease
	Releases     []SeaDexRelease
	FetchedAt    time.Time
}

// Fresh reports whether the cache entry is still inside the 24h window.
func (c SeaDexCache) Fresh(now time.Time) bool {
	return now.Sub(c.FetchedAt) < 24*time.Hour
}

// LogLevel enumerates the Log Sink's output levels.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarn    LogLevel = "warn"
	LogError   LogLevel = "error"
)

// Log is a persisted record written asynchronously by the Log Sink as it
// subscribes to the Event Bus.
type Log struct {
	ID        int64
	EventType string
	Level     LogLevel
	Message   string
	Details   string
	CreatedAt time.Time
}

// LogFilter narrows a paginated log query.
type LogFilter struct {
	Level     LogLevel
	EventType string
}

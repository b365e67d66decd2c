// Package decision implements the Decision Engine: a pure function that
// converts a candidate release into an accept/upgrade/reject action
// (spec.md §4.3). It performs no I/O and no logging; callers own both.
package decision

import (
	"strings"

	"github.com/slipstream/slipstream/internal/quality"
	"github.com/slipstream/slipstream/internal/store"
)

// ActionKind enumerates the three possible decisions.
type ActionKind string

const (
	ActionAccept  ActionKind = "accept"
	ActionUpgrade ActionKind = "upgrade"
	ActionReject  ActionKind = "reject"
)

// UpgradeReason explains why an Upgrade action was taken.
type UpgradeReason string

const (
	ReasonSeadexRelease UpgradeReason = "seadex_release"
	ReasonBetterQuality UpgradeReason = "better_quality"
)

// Action is the Decision Engine's verdict for one candidate.
type Action struct {
	Kind          ActionKind
	Quality       quality.Quality
	IsSeadex      bool
	UpgradeReason UpgradeReason
	RejectReason  string
}

// ShouldDownload reports whether action warrants queueing the candidate,
// per spec.md §4.3's should_download rule.
func ShouldDownload(a Action) bool {
	return a.Kind == ActionAccept || a.Kind == ActionUpgrade
}

func reject(reason string) Action {
	return Action{Kind: ActionReject, RejectReason: reason}
}

// Candidate is the release under evaluation.
type Candidate struct {
	Title    string
	Size     *int64
	IsSeadex bool
}

// Current is the episode's existing on-disk state, or nil if the episode is
// missing entirely.
type Current struct {
	Quality  quality.Quality
	IsSeadex bool
}

// Decide implements the 12-step algorithm of spec.md §4.3. releaseQuality is
// the already-parsed quality of the candidate (spec.md §4.2 is a separate
// pure function; Decide does not parse filenames itself).
func Decide(profile quality.Profile, rules []store.ReleaseProfileRule, current *Current, candidate Candidate, releaseQuality quality.Quality) Action {
	// Step 2: allowed-quality gate.
	if !profile.Allows(releaseQuality.ID) {
		return reject("quality not allowed")
	}

	// Step 3: release-profile term rules.
	titleLower := strings.ToLower(candidate.Title)
	for _, r := range rules {
		term := strings.ToLower(r.Term)
		switch r.RuleType {
		case store.RuleMustContain:
			if !strings.Contains(titleLower, term) {
				return reject("missing required term")
			}
		case store.RuleMustNotContain:
			if strings.Contains(titleLower, term) {
				return reject("contains blocked term")
			}
		}
	}

	// Step 4: size band.
	if !profile.SizeInBand(candidate.Size) {
		return reject("size")
	}

	// Step 5: nothing on disk yet.
	if current == nil {
		return Action{Kind: ActionAccept, Quality: releaseQuality, IsSeadex: candidate.IsSeadex}
	}

	// Step 6: current quality (Unknown rank 99 if somehow absent).
	cur := current.Quality
	if cur.ID == "" {
		cur = quality.Unknown
	}

	// Step 7: upgrades disabled entirely.
	if !profile.UpgradeAllowed {
		return reject("upgrades disabled")
	}

	// Step 8: seadex preference trumps an already-acceptable non-seadex file.
	if profile.SeadexPreferred && candidate.IsSeadex && !current.IsSeadex {
		return Action{Kind: ActionUpgrade, Quality: releaseQuality, IsSeadex: candidate.IsSeadex, UpgradeReason: ReasonSeadexRelease}
	}

	// Step 9: current already meets cutoff and is itself a seadex release.
	if cur.MeetsCutoff(profile.Cutoff) && current.IsSeadex {
		if candidate.IsSeadex && releaseQuality.Rank < cur.Rank {
			return Action{Kind: ActionUpgrade, Quality: releaseQuality, IsSeadex: candidate.IsSeadex, UpgradeReason: ReasonBetterQuality}
		}
		return reject("already at cutoff")
	}

	// Step 10: current already meets cutoff (non-seadex).
	if cur.MeetsCutoff(profile.Cutoff) {
		if profile.SeadexPreferred && candidate.IsSeadex {
			return Action{Kind: ActionUpgrade, Quality: releaseQuality, IsSeadex: candidate.IsSeadex, UpgradeReason: ReasonSeadexRelease}
		}
		return reject("already at cutoff")
	}

	// Step 11: strictly better quality than what's on disk.
	if releaseQuality.Rank < cur.Rank {
		return Action{Kind: ActionUpgrade, Quality: releaseQuality, IsSeadex: candidate.IsSeadex, UpgradeReason: ReasonBetterQuality}
	}

	// Step 12: no improvement.
	return reject("no improvement")
}

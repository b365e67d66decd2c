// Package parser implements the Filename/Quality Parser: a pure function
// from a release filename to its parsed title, episode, season, group,
// resolution, source, and derived Quality (spec.md §4.2).
package parser

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/slipstream/slipstream/internal/quality"
)

// ParsedRelease is the output of Parse.
type ParsedRelease struct {
	Title         string
	EpisodeNumber float64
	Season        *int
	Group         string
	Resolution    string
	Source        string
	Version       string
	Quality       quality.Quality
}

// EpisodeNumberTruncated implements episode_number_truncated(r) := floor(r);
// special-episode markers (6.5) collapse to their base integer.
func (p ParsedRelease) EpisodeNumberTruncated() int {
	return int(math.Floor(p.EpisodeNumber))
}

var (
	groupPrefixRe = regexp.MustCompile(`^\[([^\]]+)\]\s*`)

	// Episode patterns, tried right-to-left preference: the " - NN(.MM)?"
	// separator style is the anime-release norm, tried first; E/EP forms are
	// the fallback for non-standard names.
	episodeDashRe = regexp.MustCompile(`-\s*(\d{1,4})(?:\.(\d{1,2}))?(?:\s|\[|\(|$)`)
	episodeERe    = regexp.MustCompile(`(?i)\bEP?(\d{1,4})\b`)

	explicitSeasonRe = regexp.MustCompile(`(?i)\bS(\d{1,2})\b`)
	seasonWordRe     = regexp.MustCompile(`(?i)\bSeason\s+(\d{1,2})\b`)

	ordinalSeasonRe = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)\s+Season\b`)
	romanTwoRe      = regexp.MustCompile(`(?i)\bII\b$`)
	romanThreeRe    = regexp.MustCompile(`(?i)\bIII\b$`)
	partSeasonRe    = regexp.MustCompile(`(?i)\bPart\s+(\d{1,2})\b`)

	resolutionRe = regexp.MustCompile(`(?i)(2160p|1080p|720p|576p|480p|4k)`)

	versionRe = regexp.MustCompile(`(?i)\bv(\d)\b`)

	bracketedRe  = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// sourcePatterns is ordered by priority per spec.md §4.2 step 6: the first
// match wins, Remux outranking every lossy-container source.
var sourcePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"Remux", regexp.MustCompile(`(?i)\bRemux\b`)},
	{"BluRay", regexp.MustCompile(`(?i)\b(BluRay|BD|Blu-ray|BDRip)\b`)},
	{"WEBRip", regexp.MustCompile(`(?i)\bWEBRip\b`)},
	{"WEB-DL", regexp.MustCompile(`(?i)\b(WEB-DL|WEB|AMZN|CR|DSNP|NF|HMAX)\b`)},
	{"HDTV", regexp.MustCompile(`(?i)\bHDTV\b`)},
	{"DVD", regexp.MustCompile(`(?i)\bDVD\b`)},
}

// Parse reproduces spec.md §4.2's normative steps.
func Parse(filename string) (ParsedRelease, error) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	var p ParsedRelease

	if m := groupPrefixRe.FindStringSubmatch(name); m != nil {
		p.Group = m[1]
		name = groupPrefixRe.ReplaceAllString(name, "")
	}

	ep, ok := parseEpisode(name)
	if !ok {
		return ParsedRelease{}, fmt.Errorf("parser: could not find an episode number in %q", filename)
	}
	p.EpisodeNumber = ep

	p.Resolution = parseResolution(name)
	p.Source = parseSource(name)
	p.Quality = quality.FromSourceResolution(p.Source, p.Resolution)

	if m := versionRe.FindStringSubmatch(name); m != nil {
		p.Version = "v" + m[1]
	}

	title := extractTitle(name)
	p.Season = parseSeason(name, title)
	p.Title = title

	return p, nil
}

// parseEpisode prefers the right-most " - NN(.MM)?" token, falling back to
// E##/EP## forms; among multiple candidates it keeps the last plausible
// (≤ 9999) match, per spec.md §4.2 step 3.
func parseEpisode(name string) (float64, bool) {
	if matches := episodeDashRe.FindAllStringSubmatch(name, -1); len(matches) > 0 {
		for i := len(matches) - 1; i >= 0; i-- {
			m := matches[i]
			whole, err := strconv.Atoi(m[1])
			if err != nil || whole > 9999 {
				continue
			}
			if m[2] != "" {
				frac, _ := strconv.Atoi(m[2])
				return float64(whole) + float64(frac)/math.Pow(10, float64(len(m[2]))), true
			}
			return float64(whole), true
		}
	}

	if matches := episodeERe.FindAllStringSubmatch(name, -1); len(matches) > 0 {
		m := matches[len(matches)-1]
		whole, err := strconv.Atoi(m[1])
		if err == nil && whole <= 9999 {
			return float64(whole), true
		}
	}

	return 0, false
}

// parseSeason prefers an explicit S\d+/Season N token in the filename, then
// falls back to suffix inference on the cleaned title.
func parseSeason(name, title string) *int {
	if m := explicitSeasonRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n
	}
	if m := seasonWordRe.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n
	}

	if m := ordinalSeasonRe.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n
	}
	if partSeasonRe.MatchString(title) {
		m := partSeasonRe.FindStringSubmatch(title)
		n, _ := strconv.Atoi(m[1])
		return &n
	}
	if romanThreeRe.MatchString(title) {
		n := 3
		return &n
	}
	if romanTwoRe.MatchString(title) {
		n := 2
		return &n
	}
	return nil
}

func parseResolution(name string) string {
	m := resolutionRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	if strings.EqualFold(m[1], "4k") {
		return "2160p"
	}
	return strings.ToLower(m[1])
}

func parseSource(name string) string {
	for _, sp := range sourcePatterns {
		if sp.re.MatchString(name) {
			return sp.name
		}
	}
	return ""
}

// extractTitle strips the group prefix, the episode/quality/source tokens,
// and bracketed metadata, collapsing whitespace to produce the bare title.
func extractTitle(name string) string {
	title := bracketedRe.ReplaceAllString(name, " ")

	if loc := episodeDashRe.FindStringIndex(title); loc != nil {
		title = title[:loc[0]]
	} else if loc := episodeERe.FindStringIndex(title); loc != nil {
		title = title[:loc[0]]
	}

	title = resolutionRe.ReplaceAllString(title, " ")
	for _, sp := range sourcePatterns {
		title = sp.re.ReplaceAllString(title, " ")
	}
	title = versionRe.ReplaceAllString(title, " ")

	title = whitespaceRe.ReplaceAllString(title, " ")
	title = strings.Trim(title, " -_.")
	return title
}

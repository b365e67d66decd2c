// Package nyaorss implements search.IndexerClient against a Nyaa-shaped
// torrent indexer's HTML search results page, using
// github.com/PuerkitoBio/goquery (already a direct dependency for
// Cardigann-style HTML indexer scraping in the teacher's indexer stack).
// It replaces the teacher's Cardigann definition-driven indexer with a
// single fixed scraper, since the anime-fansub torrent ecosystem has no
// Cardigann definitions and only a handful of Nyaa-compatible sites.
package nyaorss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/slipstream/slipstream/internal/search"
)

// Client scrapes a Nyaa-compatible site's /?q=<query> search results page.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client against baseURL (e.g. "https://nyaa.si") with the
// given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search implements search.IndexerClient by fetching and parsing the
// site's default search results table.
func (c *Client) Search(ctx context.Context, query string) ([]search.Release, error) {
	u := fmt.Sprintf("%s/?f=0&c=1_2&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("nyaorss: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nyaorss: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nyaorss: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nyaorss: parse html: %w", err)
	}

	var releases []search.Release
	doc.Find("table.torrent-list tbody tr").Each(func(_ int, row *goquery.Selection) {
		r, ok := parseRow(row)
		if ok {
			releases = append(releases, r)
		}
	})
	return releases, nil
}

func parseRow(row *goquery.Selection) (search.Release, bool) {
	nameCell := row.Find("td").Eq(1)
	title := strings.TrimSpace(nameCell.Find("a").Not(".comments").Last().Text())
	if title == "" {
		return search.Release{}, false
	}

	magnet, _ := row.Find(`a[href^="magnet:"]`).Attr("href")

	sizeCell := strings.TrimSpace(row.Find("td").Eq(3).Text())
	dateStr, _ := row.Find("td").Eq(4).Attr("data-timestamp")
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		dateStr, _ = row.Find("td").Eq(4).Attr("title")
	}
	seedersStr := strings.TrimSpace(row.Find("td").Eq(5).Text())

	r := search.Release{
		Title:       title,
		Size:        parseSize(sizeCell),
		Seeders:     parseInt(seedersStr),
		InfoHash:    magnetInfoHash(magnet),
		DownloadURL: magnet,
		PublishDate: parseTimestamp(dateStr),
	}
	return r, true
}

// magnetInfoHash extracts the btih value out of a magnet URI's xt
// parameter, e.g. "magnet:?xt=urn:btih:ABC123&dn=...".
func magnetInfoHash(magnet string) string {
	if magnet == "" {
		return ""
	}
	u, err := url.Parse(magnet)
	if err != nil {
		return ""
	}
	xt := u.Query().Get("xt")
	const prefix = "urn:btih:"
	if idx := strings.Index(xt, prefix); idx >= 0 {
		return strings.ToUpper(xt[idx+len(prefix):])
	}
	return ""
}

// parseSize converts a "1.2 GiB"-style size string into bytes.
func parseSize(s string) int64 {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0
	}
	val, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	var multiplier float64
	switch strings.ToUpper(parts[1]) {
	case "B":
		multiplier = 1
	case "KIB":
		multiplier = 1 << 10
	case "MIB":
		multiplier = 1 << 20
	case "GIB":
		multiplier = 1 << 30
	case "TIB":
		multiplier = 1 << 40
	default:
		return 0
	}
	return int64(val * multiplier)
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// parseTimestamp accepts either a Unix epoch string (the data-timestamp
// attribute) or "2006-01-02 15:04" (the title attribute fallback).
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC()
	}
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

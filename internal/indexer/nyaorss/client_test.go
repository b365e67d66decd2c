package nyaorss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const fixturePage = `<html><body>
<table class="torrent-list"><tbody>
<tr>
  <td><a href="/?c=1_2"><img/></a></td>
  <td>
    <a href="/view/1#comments" class="comments">1</a>
    <a href="/view/1" title="Test Anime - 01 [1080p]">Test Anime - 01 [1080p]</a>
  </td>
  <td>
    <a href="/download/1.torrent"><i></i></a>
    <a href="magnet:?xt=urn:btih:abc123def&dn=Test"><i></i></a>
  </td>
  <td class="text-center">700.0 MiB</td>
  <td class="text-center" data-timestamp="1700000000" title="2023-11-14 22:13">1 day ago</td>
  <td class="text-center">42</td>
  <td class="text-center">3</td>
  <td class="text-center">120</td>
</tr>
</tbody></table>
</body></html>`

func TestSearch_ParsesRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	releases, err := c.Search(context.Background(), "Test Anime")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("expected 1 release, got %d", len(releases))
	}

	r := releases[0]
	if r.Title != "Test Anime - 01 [1080p]" {
		t.Fatalf("unexpected title: %q", r.Title)
	}
	if r.Seeders != 42 {
		t.Fatalf("expected 42 seeders, got %d", r.Seeders)
	}
	if r.InfoHash != "ABC123DEF" {
		t.Fatalf("expected info hash ABC123DEF, got %q", r.InfoHash)
	}
	if r.Size != 700*(1<<20) {
		t.Fatalf("expected size 700MiB, got %d", r.Size)
	}
	if r.PublishDate.Unix() != 1700000000 {
		t.Fatalf("expected timestamp 1700000000, got %d", r.PublishDate.Unix())
	}
}

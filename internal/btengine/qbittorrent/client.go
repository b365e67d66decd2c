// Package qbittorrent implements the BT Engine contract (spec.md §6)
// against a real qBittorrent instance via github.com/autobrr/go-qbittorrent,
// replacing the teacher's unimplemented downloader/qbittorrent stub.
package qbittorrent

import (
	"context"
	"fmt"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
)

// Torrent is the subset of qBittorrent torrent state the Completion
// Monitor and Auto-Downloader need, trimmed from qbt.Torrent.
type Torrent struct {
	Hash        string
	Name        string
	State       qbt.TorrentState
	Progress    float64
	Size        int64
	NumSeeds    int
	ContentPath string
	SavePath    string
	Category    string
	AddedOn     time.Time
}

// IsFinished reports whether qBittorrent considers the torrent fully
// downloaded (seeding or stopped-after-completion), per §4.8's
// completed-torrent batch fetch.
func (t Torrent) IsFinished() bool {
	switch t.State {
	case qbt.TorrentStateUploading, qbt.TorrentStateStalledUp, qbt.TorrentStatePausedUp,
		qbt.TorrentStateStoppedUp, qbt.TorrentStateQueuedUp, qbt.TorrentStateForcedUp:
		return true
	default:
		return false
	}
}

// IsErrored reports whether qBittorrent reports the torrent as
// unrecoverably broken, per §4.8 step 2's Error|MissingFiles branch.
func (t Torrent) IsErrored() bool {
	switch t.State {
	case qbt.TorrentStateError, qbt.TorrentStateMissingFiles:
		return true
	default:
		return false
	}
}

// IsStalledDownload reports whether the torrent is in one of the two
// states §4.8 step 2 treats as "possibly stalled" (StalledDL|MetaDL).
// Whether it is actually stalled also depends on num_seeds and added_on,
// which the caller checks separately.
func (t Torrent) IsStalledDownload() bool {
	switch t.State {
	case qbt.TorrentStateStalledDl, qbt.TorrentStateMetaDl:
		return true
	default:
		return false
	}
}

// Config holds connection details for a qBittorrent instance.
type Config struct {
	Host     string
	Username string
	Password string
}

// Client wraps the go-qbittorrent client with the narrower BT engine
// contract the rest of the system depends on, mirroring the
// embed-and-extend shape the teacher's other client wrappers use.
type Client struct {
	*qbt.Client
}

// New connects to a qBittorrent instance and authenticates.
func New(ctx context.Context, cfg Config) (*Client, error) {
	c := qbt.NewClient(qbt.Config{
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  30,
	})
	if err := c.LoginCtx(ctx); err != nil {
		return nil, fmt.Errorf("qbittorrent: login: %w", err)
	}
	return &Client{Client: c}, nil
}

// GetTorrents implements the §6 get_torrents contract method, returning
// every torrent in the configured download category.
func (c *Client) GetTorrents(ctx context.Context, category string) ([]Torrent, error) {
	raw, err := c.Client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{Category: category})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent: get torrents: %w", err)
	}

	out := make([]Torrent, 0, len(raw))
	for _, r := range raw {
		out = append(out, Torrent{
			Hash:        r.Hash,
			Name:        r.Name,
			State:       r.State,
			Progress:    r.Progress,
			Size:        r.Size,
			NumSeeds:    r.NumSeeds,
			ContentPath: r.ContentPath,
			SavePath:    r.SavePath,
			Category:    r.Category,
			AddedOn:     time.Unix(r.AddedOn, 0),
		})
	}
	return out, nil
}

// AddMagnet implements the §6 add_magnet contract method.
func (c *Client) AddMagnet(ctx context.Context, magnetOrURL, category string) error {
	if err := c.Client.AddTorrentFromUrlCtx(ctx, magnetOrURL, map[string]string{"category": category}); err != nil {
		return fmt.Errorf("qbittorrent: add magnet: %w", err)
	}
	return nil
}

// CreateCategory implements the §6 create_category contract method.
func (c *Client) CreateCategory(ctx context.Context, name, savePath string) error {
	if err := c.Client.CreateCategoryCtx(ctx, name, savePath); err != nil {
		return fmt.Errorf("qbittorrent: create category: %w", err)
	}
	return nil
}

// DeleteTorrent implements the §6 delete_torrent contract method.
func (c *Client) DeleteTorrent(ctx context.Context, hash string, deleteFiles bool) error {
	if err := c.Client.DeleteTorrentsCtx(ctx, []string{hash}, deleteFiles); err != nil {
		return fmt.Errorf("qbittorrent: delete torrent: %w", err)
	}
	return nil
}

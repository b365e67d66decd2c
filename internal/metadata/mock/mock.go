// Package mock implements internal/metadata.Provider with data derived
// deterministically from the title and episode number, for developer mode
// and tests where wiring a real episode-metadata API isn't worth it.
package mock

import (
	"context"
	"fmt"

	"github.com/slipstream/slipstream/internal/metadata"
)

// Provider is a deterministic internal/metadata.Provider. Every 13th
// episode is flagged as a recap and every 7th as filler, loosely mirroring
// how those flags cluster in real seasons.
type Provider struct{}

// New creates a mock metadata Provider.
func New() *Provider {
	return &Provider{}
}

// GetEpisode implements metadata.Provider.
func (p *Provider) GetEpisode(ctx context.Context, animeID int64, romajiTitle string, episodeNumber int) (metadata.Episode, error) {
	return metadata.Episode{
		Title:  fmt.Sprintf("%s Episode %d", romajiTitle, episodeNumber),
		Filler: episodeNumber%7 == 0,
		Recap:  episodeNumber%13 == 0,
	}, nil
}

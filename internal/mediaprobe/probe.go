// Package mediaprobe extracts the technical MediaInfo spec.md §4.8.2 step 3
// attaches to an imported episode, by shelling out to ffprobe. Adapted from
// the teacher's internal/mediainfo package, trimmed to the ffprobe-only path
// and to the handful of fields store.MediaInfo tracks.
package mediaprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/slipstream/slipstream/internal/store"
)

// Prober probes video files for technical metadata.
type Prober struct {
	// BinaryPath overrides the ffprobe executable looked up on PATH.
	BinaryPath string
}

// New creates a Prober that looks up ffprobe on PATH.
func New() *Prober {
	return &Prober{}
}

// Probe extracts MediaInfo from path. Per spec.md §4.8.2 step 3, a probe
// failure is not fatal to the caller: it returns a nil *store.MediaInfo and
// a non-nil error, and the caller proceeds with media_info = ∅.
func (p *Prober) Probe(ctx context.Context, path string) (*store.MediaInfo, error) {
	binary := p.BinaryPath
	if binary == "" {
		binary = "ffprobe"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("mediaprobe: ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mediaprobe: ffprobe failed: %w: %s", err, stderr.String())
	}

	return parseFFprobeJSON(stdout.Bytes())
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

func parseFFprobeJSON(data []byte) (*store.MediaInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("mediaprobe: parse ffprobe output: %w", err)
	}

	mi := &store.MediaInfo{}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			mi.Codec = s.CodecName
			mi.Resolution = resolutionLabel(s.Height)
		case "audio":
			mi.AudioCodecs = append(mi.AudioCodecs, s.CodecName)
		}
	}

	if seconds, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil {
		mi.Duration = int(seconds / 60)
	}

	return mi, nil
}

// resolutionLabel maps a video stream's pixel height to the nearest
// conventional resolution label used throughout quality ranking.
func resolutionLabel(height int) string {
	switch {
	case height >= 2000:
		return "2160p"
	case height >= 1000:
		return "1080p"
	case height >= 700:
		return "720p"
	case height >= 500:
		return "576p"
	case height > 0:
		return "480p"
	default:
		return ""
	}
}

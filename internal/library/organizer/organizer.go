// Package organizer performs the Completion Monitor's file operation step
// (spec.md §4.8.2 step 6): moving, copying, or hardlinking an imported
// payload to its resolved destination path. Adapted from the teacher's
// library/organizer package, trimmed of the movie/series path-generation
// helpers the renamer package already covers and of symlink support the
// spec doesn't call for.
package organizer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Mode is the file operation spec.md §4.8.2 step 6 selects between.
type Mode string

const (
	ModeMove     Mode = "move"
	ModeCopy     Mode = "copy"
	ModeHardlink Mode = "hardlink"
)

var ErrCrossDevice = errors.New("cross-device link not supported")

// Service executes the configured import file operation.
type Service struct {
	logger zerolog.Logger
}

// New creates an organizer Service.
func New(logger zerolog.Logger) *Service {
	return &Service{logger: logger.With().Str("component", "organizer").Logger()}
}

// Import executes mode against source/dest, creating the destination
// directory first. Hardlink falls back to copy on failure, per §4.8.2
// step 6; the caller never needs to know which path was actually taken
// since the destination is deterministic either way.
func (s *Service) Import(mode Mode, source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("organizer: create destination directory: %w", err)
	}

	switch mode {
	case ModeMove:
		return s.move(source, dest)
	case ModeCopy:
		return s.copyFile(source, dest)
	case ModeHardlink:
		if err := s.hardlink(source, dest); err != nil {
			s.logger.Debug().Err(err).Str("source", source).Str("dest", dest).Msg("hardlink failed, falling back to copy")
			return s.copyFile(source, dest)
		}
		return nil
	default:
		return fmt.Errorf("organizer: unknown import mode %q", mode)
	}
}

func (s *Service) move(source, dest string) error {
	if err := os.Rename(source, dest); err == nil {
		return nil
	}

	// Cross-filesystem rename: fall back to copy + delete.
	if err := s.copyFile(source, dest); err != nil {
		return err
	}
	if err := os.Remove(source); err != nil {
		s.logger.Warn().Err(err).Str("path", source).Msg("failed to remove source after move-by-copy")
	}
	return nil
}

func (s *Service) hardlink(source, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("organizer: remove existing destination: %w", err)
		}
	}
	if err := os.Link(source, dest); err != nil {
		if isCrossDeviceError(err) {
			return fmt.Errorf("%w: %w", ErrCrossDevice, err)
		}
		return fmt.Errorf("organizer: hardlink: %w", err)
	}
	return nil
}

func (s *Service) copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("organizer: open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("organizer: create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dest)
		return fmt.Errorf("organizer: copy: %w", err)
	}

	if info, err := os.Stat(source); err == nil {
		if err := os.Chmod(dest, info.Mode()); err != nil {
			s.logger.Warn().Err(err).Str("path", dest).Msg("failed to set destination file permissions")
		}
	}
	return nil
}

func isCrossDeviceError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "cross-device") || strings.Contains(s, "invalid cross-device link") || strings.Contains(s, "not on the same disk")
}

// Package logsink subscribes to the Event Bus as an always-on consumer and
// persists high-value events as Log rows (spec.md §4.9), the one durable
// sink in an otherwise best-effort broadcast system.
package logsink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/slipstream/slipstream/internal/eventbus"
	"github.com/slipstream/slipstream/internal/store"
)

// levelByKind maps an event kind to the log level the Log Sink writes it
// at. Kinds absent from this map (besides the *Progress kinds, which are
// dropped outright) default to LogInfo.
var levelByKind = map[eventbus.Kind]store.LogLevel{
	eventbus.Error:                store.LogError,
	eventbus.SystemStatus:         store.LogWarn,
	eventbus.DownloadFinished:     store.LogSuccess,
	eventbus.ImportFinished:       store.LogSuccess,
	eventbus.ScanFinished:         store.LogSuccess,
	eventbus.RssCheckFinished:     store.LogSuccess,
	eventbus.ScanFolderFinished:   store.LogSuccess,
	eventbus.RenameFinished:       store.LogSuccess,
	eventbus.SearchMissingFinished: store.LogSuccess,
}

// Sink persists bus events as Log rows.
type Sink struct {
	store  *store.Store
	bus    *eventbus.Bus
	logger zerolog.Logger
}

// New creates a Log Sink bound to store and bus.
func New(st *store.Store, bus *eventbus.Bus, logger zerolog.Logger) *Sink {
	return &Sink{store: st, bus: bus, logger: logger.With().Str("component", "logsink").Logger()}
}

// Run subscribes to the bus and persists events until ctx is cancelled. It
// is meant to be launched as its own goroutine at startup, matching the
// teacher's always-on ring-buffer consumer in internal/logger/broadcaster.go.
func (s *Sink) Run(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.Events:
			if !ok {
				return
			}
			if e.Kind.IsProgress() {
				continue
			}
			s.persist(ctx, e)
		}
	}
}

func (s *Sink) persist(ctx context.Context, e eventbus.Event) {
	level, ok := levelByKind[e.Kind]
	if !ok {
		level = store.LogInfo
	}

	message, _ := e.Data["message"].(string)
	if message == "" {
		message = string(e.Kind)
	}
	details, _ := e.Data["details"].(string)

	if err := s.store.AddLog(ctx, store.Log{
		EventType: string(e.Kind),
		Level:     level,
		Message:   message,
		Details:   details,
	}); err != nil {
		s.logger.Error().Err(err).Str("event", string(e.Kind)).Msg("failed to persist log event")
	}
}

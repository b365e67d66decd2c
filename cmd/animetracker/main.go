// Command animetracker is the anime download tracker's entrypoint. It
// wires the Store, domain services, Scheduler, Completion Monitor, and
// Event Bus together in the construction order spec.md §9 calls for:
// Store first, then the services that depend on it, then the Scheduler
// that drives them, then the always-on Completion Monitor and Event Bus
// consumers.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/slipstream/slipstream/internal/autodownload"
	"github.com/slipstream/slipstream/internal/btengine/qbittorrent"
	"github.com/slipstream/slipstream/internal/completion"
	"github.com/slipstream/slipstream/internal/config"
	"github.com/slipstream/slipstream/internal/eventbus"
	"github.com/slipstream/slipstream/internal/import/renamer"
	"github.com/slipstream/slipstream/internal/indexer/feedfetcher"
	"github.com/slipstream/slipstream/internal/indexer/mock"
	"github.com/slipstream/slipstream/internal/indexer/nyaorss"
	"github.com/slipstream/slipstream/internal/logger"
	"github.com/slipstream/slipstream/internal/logsink"
	metadataprovider "github.com/slipstream/slipstream/internal/metadata"
	metadatamock "github.com/slipstream/slipstream/internal/metadata/mock"
	"github.com/slipstream/slipstream/internal/mediaprobe"
	"github.com/slipstream/slipstream/internal/rss"
	"github.com/slipstream/slipstream/internal/scheduler"
	"github.com/slipstream/slipstream/internal/search"
	"github.com/slipstream/slipstream/internal/seadex"
	"github.com/slipstream/slipstream/internal/store"
	"github.com/slipstream/slipstream/internal/wsstream"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	devMode := flag.Bool("dev", false, "use the mock indexer and metadata provider instead of real clients")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	if err := run(cfg, log.Logger, *devMode); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger, devMode bool) error {
	// 1. Store.
	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 2. Event Bus and its always-on consumers.
	bus := eventbus.NewBus(256)
	sink := logsink.New(st, bus, log)
	go sink.Run(ctx)

	hub := wsstream.NewHub(bus, log)
	go hub.Run(ctx)
	streamMux := http.NewServeMux()
	streamMux.Handle("/ws", hub)
	streamServer := &http.Server{Addr: cfg.Server.Address(), Handler: streamMux}
	go func() {
		if err := streamServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ui stream server stopped")
		}
	}()

	// 3. BT Engine client.
	bt, err := qbittorrent.New(ctx, qbittorrent.Config{
		Host:     cfg.BTEngine.Host,
		Username: cfg.BTEngine.Username,
		Password: cfg.BTEngine.Password,
	})
	if err != nil {
		return fmt.Errorf("connect to bt engine: %w", err)
	}

	// 4. Indexer + SeaDex clients, real or mock depending on --dev.
	var indexerClient search.IndexerClient
	var seadexClient seadex.Recommender
	var metaProvider metadataprovider.Provider
	if devMode {
		indexerClient = mock.New()
		metaProvider = metadatamock.New()
	} else {
		indexerClient = nyaorss.New(cfg.Indexer.BaseURL, cfg.Indexer.RequestTimeoutDuration())
		metaProvider = metadatamock.New() // only a mock metadata provider ships, per spec.md §1
	}
	seadexClient = seadex.New(cfg.SeaDex.BaseURL, cfg.SeaDex.RequestTimeoutDuration())

	// 5. Domain services built on the Store + clients.
	selector := search.NewSelector(st, indexerClient)
	downloader := autodownload.New(st, selector, indexerClient, bt, log)
	feedFetcher := feedfetcher.New(cfg.Indexer.RequestTimeoutDuration())
	rssService := rss.New(st, feedFetcher, bt, log)
	seadexRefresher := seadex.NewRefresher(st, seadexClient, log)
	metaRefresher := metadataprovider.NewRefresher(st, metaProvider)

	renamerSettings := renamer.DefaultSettings()
	monitor := completion.New(st, bt, renamer.NewResolver(&renamerSettings), mediaprobe.New(), bus, log)

	// 6. Scheduler, registering every recurring task named in spec.md §4.7.
	sched, err := scheduler.New(log)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	tasks := []scheduler.TaskConfig{
		{
			ID: "autodownload", Name: "Auto-Downloader sweep",
			Description: "Search and queue releases for monitored titles",
			Interval:    cfg.Scheduler.AutoDownloadInterval,
			Func:        func(ctx context.Context) error { return downloader.Run(ctx) },
		},
		{
			ID: "rss", Name: "RSS feed check",
			Description: "Fetch enabled feeds and queue new items",
			Interval:    cfg.Scheduler.RSSInterval,
			Func:        func(ctx context.Context) error { return rssService.Run(ctx) },
		},
		{
			ID: "import", Name: "Completion import",
			Description: "Import finished torrents into the library",
			Interval:    cfg.Scheduler.ImportInterval,
			RunOnStart:  true,
			Func:        func(ctx context.Context) error { return monitor.RunImportLoop(ctx) },
		},
		{
			ID: "progress", Name: "Download progress",
			Description: "Publish per-torrent progress events",
			Interval:    cfg.Scheduler.ProgressInterval,
			RunOnStart:  true,
			Func:        func(ctx context.Context) error { return monitor.RunProgressLoop(ctx) },
		},
		{
			ID: "seadex-refresh", Name: "SeaDex cache refresh",
			Description: "Refresh the seadex recommendation cache for monitored titles",
			Interval:    cfg.Scheduler.SeaDexRefreshInterval,
			Func:        func(ctx context.Context) error { return seadexRefresher.RefreshStale(ctx) },
		},
		{
			ID: "metadata-refresh", Name: "Episode metadata refresh",
			Description: "Refresh episode titles and air dates for monitored titles",
			Interval:    24 * time.Hour,
			Func:        func(ctx context.Context) error { return metaRefresher.RefreshMonitored(ctx) },
		},
	}
	for _, t := range tasks {
		if err := sched.RegisterTask(t); err != nil {
			return fmt.Errorf("register task %q: %w", t.ID, err)
		}
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	bus.Publish(eventbus.New(eventbus.SystemStatus, map[string]any{"status": "started"}))
	log.Info().Msg("animetracker started")

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = streamServer.Shutdown(shutdownCtx)
	return nil
}

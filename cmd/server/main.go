package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/explorenyc/eventscout/internal/aggregate"
	"github.com/explorenyc/eventscout/internal/api"
	"github.com/explorenyc/eventscout/internal/apperr"
	"github.com/explorenyc/eventscout/internal/config"
	"github.com/explorenyc/eventscout/internal/source"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/eventscout.yaml", "Path to YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Build source adapters ─────────────────────────────────────────────────
	agg, err := buildAggregator(cfg)
	if err != nil {
		slog.Error("failed to build aggregator", "err", err)
		os.Exit(1)
	}
	slog.Info("sources configured", "sources", agg.AvailableSources())

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	handler := api.New(agg, loader)
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		newAgg, err := buildAggregator(newCfg)
		if err != nil {
			slog.Warn("hot-reload skipped: no usable sources", "err", err)
			return
		}
		handler.SwapAggregator(newAgg)
		slog.Info("sources hot-reloaded", "sources", newAgg.AvailableSources())
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	slog.Info("goodbye")
}

// buildAggregator constructs every enabled adapter. A misconfigured
// commercial adapter is skipped with a warning; zero usable adapters is
// fatal to the caller.
func buildAggregator(cfg *config.Config) (*aggregate.Aggregator, error) {
	var sources []source.Source

	if cfg.Sources.NYCOpenData.Enabled {
		sources = append(sources, source.NewNYCOpenData(cfg.Sources.NYCOpenData.BaseURL))
	}
	if cfg.Sources.Eventbrite.Enabled {
		eb, err := source.NewEventbrite(cfg.Sources.Eventbrite.APIKey, cfg.Sources.Eventbrite.BaseURL)
		if err != nil {
			if apperr.IsConfiguration(err) {
				slog.Warn("eventbrite adapter skipped", "err", err)
			} else {
				return nil, err
			}
		} else {
			sources = append(sources, eb)
		}
	}
	if cfg.Sources.CityFeeds.Enabled {
		sources = append(sources, source.NewCityFeeds(cfg.Sources.CityFeeds.URLs))
	}

	return aggregate.New(sources...)
}

// Package main wires together the news crawler service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/newsbrief/crawler/internal/api"
	"github.com/newsbrief/crawler/internal/clock/system"
	"github.com/newsbrief/crawler/internal/config"
	"github.com/newsbrief/crawler/internal/convert"
	"github.com/newsbrief/crawler/internal/crawl"
	"github.com/newsbrief/crawler/internal/fetcher"
	"github.com/newsbrief/crawler/internal/logging"
	"github.com/newsbrief/crawler/internal/render"
	"github.com/newsbrief/crawler/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("redis close failed", zap.Error(closeErr))
		}
	}()

	clk := system.New(cfg.Location())
	articleStore := store.New(client, clk, logger.Named("store"))

	renderer, err := render.NewChromedp(render.Config{
		UserAgent:   cfg.Crawler.UserAgent,
		NavTimeout:  cfg.NavTimeout(),
		MaxLoadMore: cfg.Crawler.MaxLoadMore,
		SettleDelay: cfg.SettleDelay(),
		ExecPath:    cfg.Headless.ExecPath,
	}, logger.Named("render"))
	if err != nil {
		logger.Fatal("renderer init failed", zap.Error(err))
	}
	defer renderer.Close()

	articleFetcher := fetcher.New(fetcher.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.FetchTimeout(),
		HostQPS:   cfg.Crawler.HostQPS,
	}, logger.Named("fetcher"))

	pipeline := crawl.New(
		renderer,
		articleFetcher,
		convert.New(logger.Named("convert")),
		articleStore,
		clk,
		crawl.Config{
			BaseURL:       cfg.Crawler.BaseURL,
			RecencyWindow: cfg.RecencyWindow(),
		},
		logger.Named("crawl"),
	)

	// First run happens immediately on startup; the schedule covers the rest.
	go pipeline.RunAll(ctx)

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := scheduler.AddFunc(cfg.Schedule.Spec, func() { pipeline.RunAll(ctx) }); err != nil {
		logger.Fatal("schedule setup failed", zap.String("spec", cfg.Schedule.Spec), zap.Error(err))
	}
	scheduler.Start()
	logger.Info("scheduler started", zap.String("spec", cfg.Schedule.Spec))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(articleStore, logger.Named("api")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	// An in-flight run is abandoned here; per-category saves are atomic so
	// the cache is never left half-written.
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// Package main wires together the gardend service binary.
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

	"go.uber.org/zap"

	"github.com/SouravInsights/gardend/internal/api"
	"github.com/SouravInsights/gardend/internal/books"
	"github.com/SouravInsights/gardend/internal/clock/system"
	"github.com/SouravInsights/gardend/internal/config"
	"github.com/SouravInsights/gardend/internal/discord"
	"github.com/SouravInsights/gardend/internal/logging"
	"github.com/SouravInsights/gardend/internal/newsletter"
	"github.com/SouravInsights/gardend/internal/revalidate"
	"github.com/SouravInsights/gardend/internal/storage/badgerkv"
	"github.com/SouravInsights/gardend/internal/storage/postgres"
	"github.com/SouravInsights/gardend/internal/watcher"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kvStore, err := badgerkv.New(cfg.KV.Path, logger.Named("badger"))
	if err != nil {
		logger.Fatal("open key-value store failed", zap.Error(err))
	}
	defer func() {
		if closeErr := kvStore.Close(); closeErr != nil {
			logger.Error("close key-value store failed", zap.Error(closeErr))
		}
	}()

	curatedStore, err := postgres.NewCuratedStore(ctx, postgres.CuratedStoreConfig{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		logger.Fatal("open curated link store failed", zap.Error(err))
	}
	defer curatedStore.Close()

	clk := system.New()
	discordClient := discord.New(discord.Config{
		BaseURL:        cfg.Discord.BaseURL,
		Token:          cfg.Discord.Token,
		GuildID:        cfg.Discord.GuildID,
		ChannelNames:   cfg.Discord.ChannelNames,
		ChannelPrefix:  cfg.Discord.ChannelPrefix,
		PageSize:       cfg.Discord.PageSize,
		RequestsPerSec: cfg.Discord.RequestsPerSec,
		Timeout:        cfg.ClientTimeout(),
	}, logger.Named("discord"))

	revalClient := revalidate.New(
		cfg.Revalidate.URL,
		cfg.Auth.RevalidateSecret,
		cfg.Revalidate.Path,
		cfg.ClientTimeout(),
	)
	newsletterClient := newsletter.New(cfg.Newsletter.BaseURL, cfg.Newsletter.APIKey, cfg.ClientTimeout())
	booksClient := books.New(books.Config{
		TrackerURL:      cfg.Books.TrackerURL,
		TrackerToken:    cfg.Books.TrackerToken,
		HighlightsURL:   cfg.Books.HighlightsURL,
		HighlightsToken: cfg.Books.HighlightsToken,
		Timeout:         cfg.ClientTimeout(),
	}, logger.Named("books"))

	if cfg.Watcher.Enabled {
		watch := watcher.New(discordClient, kvStore, revalClient, watcher.Config{
			Interval: cfg.WatchInterval(),
			LeaseTTL: cfg.LeaseTTL(),
		}, logger.Named("watcher"))
		go watch.Run(ctx)
	}

	apiServer := api.NewServer(
		curatedStore,
		discordClient,
		kvStore,
		booksClient,
		newsletterClient,
		clk,
		cfg,
		logger.Named("api"),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

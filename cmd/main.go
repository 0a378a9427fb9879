package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeon99yu/Algosa/api"
	"github.com/jeon99yu/Algosa/catalog"
	"github.com/jeon99yu/Algosa/config"
	"github.com/jeon99yu/Algosa/crawler"
	"github.com/jeon99yu/Algosa/logger"
	"github.com/jeon99yu/Algosa/store"
)

func main() {
	backfill := flag.Bool("backfill", false, "ignore stored cursors and re-scan full review history")
	daemon := flag.Bool("daemon", false, "keep running, sleeping RUN_INTERVAL between runs")
	serve := flag.Bool("serve", false, "serve the read API instead of running ingestion")
	flag.Parse()

	// Getting the config
	cfg := config.New()
	log := logger.New(logger.Options{Service: "algosa", Level: cfg.LogLevel})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Database initialization
	st, err := store.New(ctx, cfg.Driver, cfg.Dsn(), cfg.BatchSize)
	if err != nil {
		log.Error("Database initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer st.Close()

	client := catalog.NewClient(catalog.Options{
		CatalogBaseURL: cfg.CatalogBaseURL,
		ReviewBaseURL:  cfg.ReviewBaseURL,
		UserAgent:      cfg.UserAgent,
		Timeout:        cfg.HTTPTimeout,
	})

	cr := crawler.New(client, client, st, log, crawler.Config{
		Categories:           cfg.Categories,
		ProductsPerCategory:  cfg.ProductsPerCategory,
		MaxReviewsPerProduct: cfg.MaxReviewsPerProduct,
		ListingPageSize:      cfg.ListingPageSize,
		ReviewPageSize:       cfg.ReviewPageSize,
		MaxReviewPages:       cfg.MaxReviewPages,
		PageDelay:            cfg.PageDelay,
		Workers:              cfg.Workers,
		RetryAttempts:        cfg.RetryAttempts,
	})

	if *serve {
		a, err := api.New(st, cr, cfg.Categories)
		if err != nil {
			log.Error("Api initialization failed", slog.Any("err", err))
			os.Exit(1)
		}
		if err := a.Run(cfg.ServerAddr()); err != nil {
			log.Error("Api stopped", slog.Any("err", err))
			os.Exit(1)
		}
		return
	}

	for {
		summary, err := cr.Run(ctx, crawler.RunOptions{Backfill: *backfill})
		if err != nil {
			log.Error("Ingestion run failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("Ingestion run finished",
			"products", summary.ProductsIngested,
			"reviews", summary.ReviewsIngested,
		)

		if !*daemon {
			return
		}
		interval := cfg.RunInterval
		if interval <= 0 {
			interval = time.Hour
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

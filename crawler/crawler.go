package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jeon99yu/Algosa/store"
)

// ErrUnknownCategory is returned before any fetching when a run names a
// category code outside the configured set.
var ErrUnknownCategory = errors.New("unknown category code")

type Config struct {
	Categories           map[string]string // display name -> category code
	ProductsPerCategory  int
	MaxReviewsPerProduct int
	ListingPageSize      int
	ReviewPageSize       int
	MaxReviewPages       int
	PageDelay            time.Duration
	Workers              int
	RetryAttempts        int
}

// RunOptions narrows a single run. Zero values fall back to the Config.
type RunOptions struct {
	Categories           []string // category codes; empty means all configured
	ProductsPerCategory  int
	MaxReviewsPerProduct int
	// Backfill ignores stored cursors and re-scans full review history.
	// The per-run review cap still applies.
	Backfill bool
}

type Summary struct {
	ProductsIngested int `json:"productsIngested"`
	ReviewsIngested  int `json:"reviewsIngested"`
}

// Crawler drives one ingestion run: categories, then products, then review
// pages. Pages of a single product are always fetched sequentially,
// newest-first, so the cursor comparison stays valid; independent products
// may run on a bounded worker pool.
type Crawler struct {
	lister  Lister
	fetcher ReviewFetcher
	storage Storage
	log     *slog.Logger
	cfg     Config
}

func New(lister Lister, fetcher ReviewFetcher, storage Storage, log *slog.Logger, cfg Config) *Crawler {
	if cfg.ProductsPerCategory <= 0 {
		cfg.ProductsPerCategory = 60
	}
	if cfg.MaxReviewsPerProduct <= 0 {
		cfg.MaxReviewsPerProduct = 300
	}
	if cfg.ListingPageSize <= 0 {
		cfg.ListingPageSize = 60
	}
	if cfg.ReviewPageSize <= 0 {
		cfg.ReviewPageSize = 10
	}
	if cfg.MaxReviewPages <= 0 {
		cfg.MaxReviewPages = 30
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Crawler{lister: lister, fetcher: fetcher, storage: storage, log: log, cfg: cfg}
}

// Run ingests every requested category and returns per-run totals. A failing
// product or category is logged and skipped; only an unknown category code
// or a cancelled context aborts the run.
func (c *Crawler) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	codes, err := c.resolveCategories(opts.Categories)
	if err != nil {
		return Summary{}, err
	}

	perCategory := opts.ProductsPerCategory
	if perCategory <= 0 {
		perCategory = c.cfg.ProductsPerCategory
	}
	maxReviews := opts.MaxReviewsPerProduct
	if maxReviews <= 0 {
		maxReviews = c.cfg.MaxReviewsPerProduct
	}

	var productsTotal, reviewsTotal int64
	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}

		products := c.listCategory(ctx, code, perCategory)
		if len(products) == 0 {
			c.log.Info("category yielded no products", "category", code)
			continue
		}

		// Products must land before their reviews.
		if err := c.storage.UpsertProducts(ctx, products); err != nil {
			c.log.Error("product upsert failed", "category", code, slog.Any("err", err))
			continue
		}
		atomic.AddInt64(&productsTotal, int64(len(products)))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.cfg.Workers)
		for _, p := range products {
			productID := p.ProductID
			g.Go(func() error {
				n := c.collectProduct(gctx, productID, maxReviews, opts.Backfill)
				atomic.AddInt64(&reviewsTotal, int64(n))
				return nil
			})
		}
		_ = g.Wait()

		c.log.Info("category done", "category", code, "products", len(products))
	}

	return Summary{
		ProductsIngested: int(atomic.LoadInt64(&productsTotal)),
		ReviewsIngested:  int(atomic.LoadInt64(&reviewsTotal)),
	}, nil
}

func (c *Crawler) resolveCategories(requested []string) ([]string, error) {
	valid := make(map[string]bool, len(c.cfg.Categories))
	for _, code := range c.cfg.Categories {
		valid[code] = true
	}

	if len(requested) == 0 {
		codes := make([]string, 0, len(valid))
		for code := range valid {
			codes = append(codes, code)
		}
		return codes, nil
	}

	for _, code := range requested {
		if !valid[code] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, code)
		}
	}
	return requested, nil
}

// listCategory pages through the listing until it has limit products, the
// upstream runs dry, or a page fails. A failed listing page is local: it
// ends the listing early with whatever was already collected.
func (c *Crawler) listCategory(ctx context.Context, category string, limit int) []store.Product {
	var products []store.Product
	for page := 1; len(products) < limit; page++ {
		if page > 1 && !c.pause(ctx, c.cfg.PageDelay) {
			break
		}
		batch, err := c.lister.ListProducts(ctx, category, c.cfg.ListingPageSize, page)
		if err != nil {
			c.log.Warn("listing page failed", "category", category, "page", page, slog.Any("err", err))
			break
		}
		if len(batch) == 0 {
			break
		}
		products = append(products, batch...)
	}
	if len(products) > limit {
		products = products[:limit]
	}
	return products
}

// collectProduct runs the incremental pagination state machine for one
// product and persists whatever it accepted, even when pagination halted
// early. Returns the number of reviews persisted.
func (c *Crawler) collectProduct(ctx context.Context, productID string, maxReviews int, backfill bool) int {
	cursor := store.EpochDate
	if !backfill {
		var err error
		cursor, err = c.storage.LastCollectedDate(ctx, productID)
		if err != nil {
			c.log.Error("cursor read failed", "product_id", productID, slog.Any("err", err))
			return 0
		}
	}

	var accepted []store.Review
collect:
	for page := 1; page <= c.cfg.MaxReviewPages; page++ {
		if page > 1 && !c.pause(ctx, c.cfg.PageDelay) {
			break
		}
		batch, err := c.fetchReviewPage(ctx, productID, page)
		if err != nil {
			c.log.Warn("review page failed", "product_id", productID, "page", page, slog.Any("err", err))
			break
		}
		if len(batch) == 0 {
			break
		}
		for _, r := range batch {
			// At or below the watermark means a prior run already stored it.
			if !r.CreateDate.After(cursor) {
				continue
			}
			accepted = append(accepted, r)
			if len(accepted) >= maxReviews {
				break collect
			}
		}
	}

	if len(accepted) == 0 {
		return 0
	}

	reviews := DedupReviews(accepted)
	if err := c.storage.UpsertReviews(ctx, reviews); err != nil {
		c.log.Error("review upsert failed", "product_id", productID, slog.Any("err", err))
		return 0
	}

	latest := reviews[0].CreateDate
	for _, r := range reviews[1:] {
		if r.CreateDate.After(latest) {
			latest = r.CreateDate
		}
	}
	if err := c.storage.SetLastCollectedDate(ctx, productID, latest); err != nil {
		c.log.Error("cursor write failed", "product_id", productID, slog.Any("err", err))
	}

	c.log.Debug("product collected", "product_id", productID, "reviews", len(reviews))
	return len(reviews)
}

// fetchReviewPage is the bounded-retry hook around a single page fetch.
// With RetryAttempts zero it is a plain one-shot call.
func (c *Crawler) fetchReviewPage(ctx context.Context, productID string, page int) ([]store.Review, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt)*500*time.Millisecond +
				time.Duration(rand.Int63n(int64(250*time.Millisecond)))
			if !c.pause(ctx, backoff) {
				break
			}
		}
		batch, err := c.fetcher.FetchReviews(ctx, productID, c.cfg.ReviewPageSize, page)
		if err == nil {
			return batch, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// pause sleeps between successive page requests. The delay is backpressure
// against upstream rate limiting, not an optimization.
func (c *Crawler) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

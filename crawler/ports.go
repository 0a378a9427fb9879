package crawler

import (
	"context"
	"time"

	"github.com/jeon99yu/Algosa/store"
)

// Lister fetches one page of product summaries for a category code.
type Lister interface {
	ListProducts(ctx context.Context, category string, size, page int) ([]store.Product, error)
}

// ReviewFetcher fetches one page of reviews for a product.
type ReviewFetcher interface {
	FetchReviews(ctx context.Context, productID string, pageSize, page int) ([]store.Review, error)
}

// Storage is the durable side of a run: idempotent upserts plus the
// per-product collection watermark.
type Storage interface {
	UpsertProducts(ctx context.Context, products []store.Product) error
	UpsertReviews(ctx context.Context, reviews []store.Review) error
	LastCollectedDate(ctx context.Context, productID string) (time.Time, error)
	SetLastCollectedDate(ctx context.Context, productID string, date time.Time) error
}

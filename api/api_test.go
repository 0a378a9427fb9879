package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeon99yu/Algosa/crawler"
	"github.com/jeon99yu/Algosa/store"
)

type emptyUpstream struct{}

func (emptyUpstream) ListProducts(ctx context.Context, category string, size, page int) ([]store.Product, error) {
	return nil, nil
}

func (emptyUpstream) FetchReviews(ctx context.Context, productID string, pageSize, page int) ([]store.Review, error) {
	return nil, nil
}

var testCategories = map[string]string{"스니커즈": "103004"}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New(context.Background(), "sqlite", filepath.Join(t.TempDir(), "api_test.db"), 0)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := crawler.New(emptyUpstream{}, emptyUpstream{}, s, log, crawler.Config{Categories: testCategories})
	return setupRouter(s, c, testCategories), s
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCategoryProducts(t *testing.T) {
	r, s := newTestRouter(t)

	t.Run("empty category -> 404", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/category/103004/products", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})

	if err := s.UpsertProducts(context.Background(), []store.Product{
		{ProductID: "P1", BrandName: "adidas", GoodsName: "Samba OG", Category: "103004"},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	t.Run("seeded category -> 200", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/category/103004/products", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp ProductListResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if len(resp.Products) != 1 || resp.Products[0].ProductID != "P1" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})
}

func TestProductReviews(t *testing.T) {
	r, s := newTestRouter(t)
	ctx := context.Background()

	if err := s.UpsertProducts(ctx, []store.Product{{ProductID: "P1", Category: "103004"}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := s.UpsertReviews(ctx, []store.Review{
		{ReviewNo: "R1", ProductID: "P1", CreateDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), UserNickName: "kim", Grade: 4},
		{ReviewNo: "R2", ProductID: "P1", CreateDate: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), UserNickName: "lee", Grade: 5},
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	w := doRequest(r, http.MethodGet, "/product/P1/reviews", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ReviewListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.ReviewsQuantity != 2 {
		t.Fatalf("quantity = %d, want 2", resp.ReviewsQuantity)
	}
	if resp.AverageGrade != 4.5 {
		t.Fatalf("average = %v, want 4.5", resp.AverageGrade)
	}
	if len(resp.Reviews) != 2 || resp.Reviews[0].ReviewNo != "R2" {
		t.Fatalf("expected newest-first reviews, got %+v", resp.Reviews)
	}
	if resp.Reviews[0].ReviewDate != "2025-01-03" {
		t.Fatalf("review_date = %q", resp.Reviews[0].ReviewDate)
	}
}

func TestIngestRun(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("unknown category -> 400", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/ingest/run", `{"categories":["999999"]}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("empty upstream -> zero summary", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/ingest/run", `{"backfill":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var summary crawler.Summary
		if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if summary.ProductsIngested != 0 || summary.ReviewsIngested != 0 {
			t.Fatalf("unexpected summary %+v", summary)
		}
	})
}

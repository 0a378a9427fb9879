package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func listingServer(t *testing.T, body string, wantQuery map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range wantQuery {
			if got := r.URL.Query().Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestListProducts(t *testing.T) {
	body := `{"data":{"list":[
		{"goodsNo":4467470,"brandName":"adidas","goodsName":"Samba OG","price":139000,
		 "reviewCount":1200,"reviewScore":95,"thumbnail":"https://img.example/1.jpg",
		 "goodsLinkUrl":"https://goods.example/4467470"},
		{"brandName":"no-id","goodsName":"dropped"}
	]}}`
	srv := listingServer(t, body, map[string]string{
		"category": "103004", "size": "60", "page": "1", "gf": "A", "caller": "CATEGORY",
	})
	defer srv.Close()

	c := NewClient(Options{CatalogBaseURL: srv.URL, ReviewBaseURL: srv.URL, UserAgent: "Mozilla/5.0"})
	products, err := c.ListProducts(context.Background(), "103004", 60, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product (record without goodsNo dropped), got %d", len(products))
	}

	p := products[0]
	if p.ProductID != "4467470" {
		t.Errorf("product_id = %q", p.ProductID)
	}
	if p.BrandName != "adidas" || p.GoodsName != "Samba OG" || p.Price != 139000 {
		t.Errorf("unexpected product %+v", p)
	}
	if p.ReviewScore != 95 || p.ReviewCount != 1200 {
		t.Errorf("unexpected review stats %+v", p)
	}
	if p.Category != "103004" {
		t.Errorf("category = %q, want the requested code", p.Category)
	}
}

func TestListProductsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Options{CatalogBaseURL: srv.URL, ReviewBaseURL: srv.URL})
	products, err := c.ListProducts(context.Background(), "103004", 60, 1)
	if err == nil {
		t.Fatal("expected an error for non-200 status")
	}
	if len(products) != 0 {
		t.Fatalf("expected empty result, got %d", len(products))
	}
}

func TestFetchReviews(t *testing.T) {
	body := `{"data":{"list":[
		{"no":90001,"createDate":"2025-01-03T11:22:33Z","content":"good",
		 "grade":5,"userProfileInfo":{"userNickName":"kim"}},
		{"no":90002,"createDate":"not-a-date","content":"bad date","grade":3,
		 "userProfileInfo":{"userNickName":"lee"}},
		{"no":90003,"content":"missing date","grade":2,
		 "userProfileInfo":{"userNickName":"park"}}
	]}}`
	srv := listingServer(t, body, map[string]string{
		"goodsNo": "4467470", "pageSize": "10", "page": "2",
	})
	defer srv.Close()

	c := NewClient(Options{CatalogBaseURL: srv.URL, ReviewBaseURL: srv.URL})
	reviews, err := c.FetchReviews(context.Background(), "4467470", 10, 2)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected records with unparseable dates dropped, got %d", len(reviews))
	}

	r := reviews[0]
	if r.ReviewNo != "90001" || r.ProductID != "4467470" {
		t.Errorf("unexpected identity %+v", r)
	}
	if r.UserNickName != "kim" || r.Grade != 5 {
		t.Errorf("unexpected fields %+v", r)
	}
	want := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	if !r.CreateDate.Equal(want) {
		t.Errorf("createDate = %v, want date-only %v", r.CreateDate, want)
	}
}

func TestFetchReviewsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c := NewClient(Options{CatalogBaseURL: srv.URL, ReviewBaseURL: srv.URL})
	if _, err := c.FetchReviews(context.Background(), "4467470", 10, 1); err == nil {
		t.Fatal("expected a decode error for a malformed body")
	}
}

func TestClientSendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Mozilla/5.0" {
			t.Errorf("user-agent = %q", got)
		}
		_, _ = w.Write([]byte(`{"data":{"list":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{CatalogBaseURL: srv.URL, ReviewBaseURL: srv.URL, UserAgent: "Mozilla/5.0"})
	if _, err := c.ListProducts(context.Background(), "001", 60, 1); err != nil {
		t.Fatalf("list failed: %v", err)
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jeon99yu/Algosa/store"
)

// Client talks to the upstream catalog API. It only reads; every method is a
// single page fetch with no retries or persistence.
type Client struct {
	httpClient  *http.Client
	catalogBase string
	reviewBase  string
	userAgent   string
}

type Options struct {
	CatalogBaseURL string
	ReviewBaseURL  string
	UserAgent      string
	Timeout        time.Duration
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		catalogBase: opts.CatalogBaseURL,
		reviewBase:  opts.ReviewBaseURL,
		userAgent:   opts.UserAgent,
	}
}

// ListProducts fetches one listing page for a category. The category code is
// attached to each product so the row lands in the right catalog slice.
func (c *Client) ListProducts(ctx context.Context, category string, size, page int) ([]store.Product, error) {
	q := url.Values{}
	q.Set("gf", "A")
	q.Set("category", category)
	q.Set("size", fmt.Sprint(size))
	q.Set("caller", "CATEGORY")
	q.Set("page", fmt.Sprint(page))

	var body listingResponse
	if err := c.getJSON(ctx, c.catalogBase+"/api2/dp/v1/plp/goods?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	products := make([]store.Product, 0, len(body.Data.List))
	for _, item := range body.Data.List {
		id := item.GoodsNo.String()
		if id == "" {
			continue
		}
		products = append(products, store.Product{
			ProductID:    id,
			BrandName:    item.BrandName,
			GoodsName:    item.GoodsName,
			Price:        item.Price,
			ReviewCount:  item.ReviewCount,
			ReviewScore:  item.ReviewScore,
			Thumbnail:    item.Thumbnail,
			GoodsLinkURL: item.GoodsLinkURL,
			Category:     category,
		})
	}
	return products, nil
}

// FetchReviews fetches one review page for a product, in the upstream's own
// order (observed newest-first). Records without a parseable createDate are
// dropped; the rest of the page survives.
func (c *Client) FetchReviews(ctx context.Context, productID string, pageSize, page int) ([]store.Review, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("pageSize", fmt.Sprint(pageSize))
	q.Set("goodsNo", productID)

	var body reviewResponse
	if err := c.getJSON(ctx, c.reviewBase+"/api2/review/v1/view/list?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	reviews := make([]store.Review, 0, len(body.Data.List))
	for _, item := range body.Data.List {
		no := item.No.String()
		if no == "" {
			continue
		}
		created, err := time.Parse(time.RFC3339, item.CreateDate)
		if err != nil {
			continue
		}
		reviews = append(reviews, store.Review{
			ReviewNo:     no,
			ProductID:    productID,
			CreateDate:   store.DateOnly(created),
			UserNickName: item.UserProfileInfo.UserNickName,
			Content:      item.Content,
			Grade:        item.Grade,
		})
	}
	return reviews, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

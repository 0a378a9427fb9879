package api

import "github.com/jeon99yu/Algosa/store"

type CategoriesResponse struct {
	Categories map[string]string `json:"categories"`
}

type ProductListResponse struct {
	Category string          `json:"category"`
	Products []store.Product `json:"products"`
}

type ReviewListResponse struct {
	ProductID       string           `json:"product_id"`
	AverageGrade    float64          `json:"average_grade"`
	ReviewsQuantity int64            `json:"reviews_quantity"`
	Reviews         []ReviewResponse `json:"reviews"`
}

type ReviewResponse struct {
	ReviewNo   string `json:"review_no"`
	Author     string `json:"author"`
	Content    string `json:"content"`
	Grade      int    `json:"grade"`
	ReviewDate string `json:"review_date"`
}

type IngestInput struct {
	Categories           []string `json:"categories"`
	ProductsPerCategory  int      `json:"products_per_category"`
	MaxReviewsPerProduct int      `json:"max_reviews_per_product"`
	Backfill             bool     `json:"backfill"`
}

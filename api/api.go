package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeon99yu/Algosa/crawler"
	"github.com/jeon99yu/Algosa/store"
)

// API is the read-only collaborator surface: dashboards and analytics read
// the persisted tables through it, and can trigger an ingestion run. It
// renders nothing itself.
type API struct {
	engine *gin.Engine
}

func setupRouter(s *store.Store, c *crawler.Crawler, categories map[string]string) *gin.Engine {
	r := gin.Default()

	// Ping test
	r.GET("/ping", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Configured category map
	r.GET("/categories", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
	})

	// Persisted products of one category
	r.GET("/category/:code/products", func(ctx *gin.Context) {
		code := ctx.Params.ByName("code")
		products, err := s.ProductsByCategory(ctx.Request.Context(), code)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(products) == 0 {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Products not found"})
			return
		}
		ctx.JSON(http.StatusOK, ProductListResponse{Category: code, Products: products})
	})

	// Persisted reviews of one product, newest-first, with aggregates
	r.GET("/product/:product_id/reviews", func(ctx *gin.Context) {
		productID := ctx.Params.ByName("product_id")
		reviews, err := s.ReviewsByProduct(ctx.Request.Context(), productID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(reviews) == 0 {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Reviews not found"})
			return
		}

		averageGrade, err := s.AverageGradeByProduct(ctx.Request.Context(), productID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		quantity, err := s.ReviewCountByProduct(ctx.Request.Context(), productID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, ReviewListResponse{
			ProductID:       productID,
			AverageGrade:    averageGrade,
			ReviewsQuantity: quantity,
			Reviews:         parseReviews(reviews),
		})
	})

	// Trigger an ingestion run
	r.POST("/ingest/run", func(ctx *gin.Context) {
		var input IngestInput
		if err := ctx.BindJSON(&input); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		summary, err := c.Run(ctx.Request.Context(), crawler.RunOptions{
			Categories:           input.Categories,
			ProductsPerCategory:  input.ProductsPerCategory,
			MaxReviewsPerProduct: input.MaxReviewsPerProduct,
			Backfill:             input.Backfill,
		})
		if err != nil {
			if errors.Is(err, crawler.ErrUnknownCategory) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, summary)
	})

	return r
}

func New(s *store.Store, c *crawler.Crawler, categories map[string]string) (*API, error) {
	return &API{
		engine: setupRouter(s, c, categories),
	}, nil
}

func (a *API) Run(addr string) error {
	return a.engine.Run(addr)
}

func parseReviews(reviews []store.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewResponse{
			ReviewNo:   r.ReviewNo,
			Author:     r.UserNickName,
			Content:    r.Content,
			Grade:      r.Grade,
			ReviewDate: r.CreateDate.Format("2006-01-02"),
		})
	}
	return out
}

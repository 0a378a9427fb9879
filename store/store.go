package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const defaultBatchSize = 100

type Store struct {
	database  *gorm.DB
	batchSize int
}

// New opens the configured database and migrates the schema. Supported
// drivers are mysql, postgres and sqlite.
func New(ctx context.Context, driver, dsn string, batchSize int) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Migrate the schemas
	if err := db.WithContext(ctx).AutoMigrate(&Product{}, &Review{}, &ProductLastDate{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Store{database: db, batchSize: batchSize}, nil
}

func (s *Store) Close() error {
	db, err := s.database.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// UpsertProducts writes product rows in batches, overwriting mutable fields
// on conflict. Each batch commits on its own; a failing batch does not roll
// back the ones before it.
func (s *Store) UpsertProducts(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"brandName", "goodsName", "price", "reviewCount",
			"reviewScore", "thumbnail", "goodsLinkUrl", "category",
		}),
	}

	for start := 0; start < len(products); start += s.batchSize {
		end := start + s.batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]
		if result := s.database.WithContext(ctx).Clauses(onConflict).Create(&batch); result.Error != nil {
			return fmt.Errorf("failed to upsert products: %w", result.Error)
		}
	}
	return nil
}

// UpsertReviews writes review rows in batches keyed by review_no. Re-submitting
// a known review overwrites its content, grade, nickname and date, so upstream
// edits propagate.
func (s *Store) UpsertReviews(ctx context.Context, reviews []Review) error {
	if len(reviews) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "review_no"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "createDate", "userNickName", "content", "grade",
		}),
	}

	for start := 0; start < len(reviews); start += s.batchSize {
		end := start + s.batchSize
		if end > len(reviews) {
			end = len(reviews)
		}
		batch := reviews[start:end]
		if result := s.database.WithContext(ctx).Clauses(onConflict).Create(&batch); result.Error != nil {
			return fmt.Errorf("failed to upsert reviews: %w", result.Error)
		}
	}
	return nil
}

// LastCollectedDate returns the watermark for a product, or EpochDate when
// the product has never been collected.
func (s *Store) LastCollectedDate(ctx context.Context, productID string) (time.Time, error) {
	var row ProductLastDate
	err := s.database.WithContext(ctx).First(&row, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return EpochDate, nil
	}
	if err != nil {
		return EpochDate, fmt.Errorf("failed to read last collected date: %w", err)
	}
	return DateOnly(row.LastCollectedDate), nil
}

// SetLastCollectedDate advances the watermark for a product. A date that is
// not later than the stored one is ignored, never written.
func (s *Store) SetLastCollectedDate(ctx context.Context, productID string, date time.Time) error {
	date = DateOnly(date)

	current, err := s.LastCollectedDate(ctx, productID)
	if err != nil {
		return err
	}
	if !date.After(current) {
		return nil
	}

	row := ProductLastDate{ProductID: productID, LastCollectedDate: date}
	result := s.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_collected_date"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to update last collected date: %w", result.Error)
	}
	return nil
}

// ProductsByCategory lists the persisted products of one catalog slice.
func (s *Store) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	var products []Product
	if err := s.database.WithContext(ctx).Find(&products, "category = ?", category).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// ReviewsByProduct returns a product's reviews newest-first.
func (s *Store) ReviewsByProduct(ctx context.Context, productID string) ([]Review, error) {
	var reviews []Review
	if err := s.database.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("createDate desc").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	return reviews, nil
}

// AverageGradeByProduct computes the mean review grade for a product.
func (s *Store) AverageGradeByProduct(ctx context.Context, productID string) (float64, error) {
	var avg sql.NullFloat64
	if err := s.database.WithContext(ctx).Model(&Review{}).
		Select("avg(grade)").
		Where("product_id = ?", productID).
		Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("failed to get average grade: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// ReviewCountByProduct counts the persisted reviews for a product.
func (s *Store) ReviewCountByProduct(ctx context.Context, productID string) (int64, error) {
	var total int64
	if err := s.database.WithContext(ctx).Model(&Review{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return total, nil
}

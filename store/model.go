package store

import (
	"time"
)

// EpochDate is the cursor value assumed for products that have never been
// collected. Any real review date is later than this.
var EpochDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type Product struct {
	ProductID    string  `gorm:"column:product_id;primaryKey;size:50" json:"product_id"`
	BrandName    string  `gorm:"column:brandName;size:100" json:"brandName"`
	GoodsName    string  `gorm:"column:goodsName;size:255" json:"goodsName"`
	Price        int     `gorm:"column:price" json:"price"`
	ReviewCount  int     `gorm:"column:reviewCount" json:"reviewCount"`
	ReviewScore  float64 `gorm:"column:reviewScore" json:"reviewScore"`
	Thumbnail    string  `gorm:"column:thumbnail" json:"thumbnail"`
	GoodsLinkURL string  `gorm:"column:goodsLinkUrl" json:"goodsLinkUrl"`
	Category     string  `gorm:"column:category;size:50" json:"category"`
}

func (Product) TableName() string { return "products" }

type Review struct {
	ReviewNo     string    `gorm:"column:review_no;primaryKey;size:50" json:"review_no"`
	ProductID    string    `gorm:"column:product_id;size:50;index:idx_reviews_product" json:"product_id"`
	CreateDate   time.Time `gorm:"column:createDate;type:date" json:"createDate"`
	UserNickName string    `gorm:"column:userNickName;size:100" json:"userNickName"`
	Content      string    `gorm:"column:content" json:"content"`
	Grade        int       `gorm:"column:grade" json:"grade"`

	Product *Product `gorm:"foreignKey:ProductID;references:ProductID" json:"-"`
}

func (Review) TableName() string { return "reviews" }

type ProductLastDate struct {
	ProductID         string    `gorm:"column:product_id;primaryKey;size:50" json:"product_id"`
	LastCollectedDate time.Time `gorm:"column:last_collected_date;type:date" json:"last_collected_date"`
}

func (ProductLastDate) TableName() string { return "product_last_date" }

// DateOnly truncates t to its calendar date in UTC; review rows never keep
// a time component.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

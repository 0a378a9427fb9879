package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCategories maps the display name of each catalog slice to the
// upstream category code. Only codes present here are accepted by a run.
var DefaultCategories = map[string]string{
	"상의":   "001",
	"바지":   "003",
	"구두":   "103001",
	"스니커즈": "103004",
	"스포츠화": "103005",
	"향수":   "104005",
}

type Config struct {
	// Database
	Driver     string // mysql | postgres | sqlite
	Host       string
	Port       string
	DBname     string
	Username   string
	Password   string
	SQLitePath string

	// Upstream catalog API
	CatalogBaseURL string
	ReviewBaseURL  string
	UserAgent      string
	HTTPTimeout    time.Duration

	// Crawl tuning
	Categories           map[string]string
	ProductsPerCategory  int
	MaxReviewsPerProduct int
	ListingPageSize      int
	ReviewPageSize       int
	MaxReviewPages       int
	PageDelay            time.Duration
	Workers              int
	RetryAttempts        int
	BatchSize            int
	RunInterval          time.Duration

	ServerPort string
	LogLevel   string
}

func New() *Config {
	// Optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Driver:     envString("DB_DRIVER", "mysql"),
		Host:       envString("DB_HOST", "localhost"),
		Port:       envString("DB_PORT", "3306"),
		DBname:     envString("DB_NAME", "musinsa"),
		Username:   envString("DB_USER", ""),
		Password:   envString("DB_PASSWORD", ""),
		SQLitePath: envString("DB_PATH", "algosa.db"),

		CatalogBaseURL: envString("CATALOG_BASE_URL", "https://api.musinsa.com"),
		ReviewBaseURL:  envString("REVIEW_BASE_URL", "https://goods.musinsa.com"),
		UserAgent:      envString("HTTP_USER_AGENT", "Mozilla/5.0"),
		HTTPTimeout:    envDuration("HTTP_TIMEOUT", 15*time.Second),

		Categories:           DefaultCategories,
		ProductsPerCategory:  envInt("PRODUCTS_PER_CATEGORY", 60),
		MaxReviewsPerProduct: envInt("MAX_REVIEWS_PER_PRODUCT", 300),
		ListingPageSize:      envInt("LISTING_PAGE_SIZE", 60),
		ReviewPageSize:       envInt("REVIEW_PAGE_SIZE", 10),
		MaxReviewPages:       envInt("MAX_REVIEW_PAGES", 30),
		PageDelay:            envDuration("PAGE_DELAY", 300*time.Millisecond),
		Workers:              envInt("CRAWL_WORKERS", 1),
		RetryAttempts:        envInt("RETRY_ATTEMPTS", 0),
		BatchSize:            envInt("DB_BATCH_SIZE", 100),
		RunInterval:          envDuration("RUN_INTERVAL", 0),

		ServerPort: envString("SERVER_PORT", "8080"),
		LogLevel:   envString("LOG_LEVEL", "info"),
	}
}

// Dsn builds the connection string for the configured driver.
func (c Config) Dsn() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.Host, c.Username, c.Password, c.DBname, c.Port,
		)
	case "sqlite":
		return c.SQLitePath
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Username, c.Password, c.Host, c.Port, c.DBname,
		)
	}
}

// CategoryCodes returns the configured codes in no particular order.
func (c Config) CategoryCodes() []string {
	codes := make([]string, 0, len(c.Categories))
	for _, code := range c.Categories {
		codes = append(codes, code)
	}
	return codes
}

func (c Config) ServerAddr() string {
	return ":" + c.ServerPort
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

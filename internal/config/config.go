package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nkarpov/sneakershop/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	REDIS_ADDR     string
	REDIS_PASSWORD string
	REDIS_DB       int
	CACHE_TTL      time.Duration

	KAFKA_ADDRESS  string
	INVOICE_TOPIC  string
	CATALOG_TOPIC  string
	INVOICE_GROUP  string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string
	ES_INDEX    string

	JWT_SECRET     string
	PAYMENT_SECRET string

	SMTP_ADDR string
	SMTP_FROM string

	TAX_RATE_BP        int64
	SHIPPING_FLAT_FEE  int64
	FREE_SHIPPING_OVER int64

	LOG_LEVEL   string
	SERVER_PORT string
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func getenvDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func getenvInt(name string, def int64) int64 {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		REDIS_ADDR:     os.Getenv("REDIS_ADDR"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),
		REDIS_DB:       int(getenvInt("REDIS_DB", 0)),
		CACHE_TTL:      time.Duration(getenvInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		INVOICE_TOPIC: getenvDefault("INVOICE_TOPIC", "invoice_jobs"),
		CATALOG_TOPIC: getenvDefault("CATALOG_TOPIC", "product_events"),
		INVOICE_GROUP: getenvDefault("INVOICE_GROUP", "invoice-workers"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),
		ES_INDEX:    getenvDefault("ES_INDEX", "products"),

		JWT_SECRET:     must(os.Getenv("JWT_SECRET"), "JWT_SECRET"),
		PAYMENT_SECRET: must(os.Getenv("PAYMENT_SECRET"), "PAYMENT_SECRET"),

		SMTP_ADDR: os.Getenv("SMTP_ADDR"),
		SMTP_FROM: getenvDefault("SMTP_FROM", "orders@sneakershop.local"),

		TAX_RATE_BP:        getenvInt("TAX_RATE_BP", 1800),
		SHIPPING_FLAT_FEE:  getenvInt("SHIPPING_FLAT_FEE", 49900),
		FREE_SHIPPING_OVER: getenvInt("FREE_SHIPPING_OVER", 100000),

		LOG_LEVEL:   getenvDefault("LOG_LEVEL", "info"),
		SERVER_PORT: getenvDefault("SERVER_PORT", "8080"),
	}

	return config, nil
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Product{}, &models.ProductSize{},
		&models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}

	return db, nil
}

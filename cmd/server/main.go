package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nkarpov/sneakershop/internal/cache"
	"github.com/nkarpov/sneakershop/internal/config"
	"github.com/nkarpov/sneakershop/internal/httpserver"
	"github.com/nkarpov/sneakershop/internal/logging"
	appmw "github.com/nkarpov/sneakershop/internal/middleware"
	"github.com/nkarpov/sneakershop/internal/mykafka"
	"github.com/nkarpov/sneakershop/internal/payment"
	"github.com/nkarpov/sneakershop/internal/repo"
	"github.com/nkarpov/sneakershop/internal/search"
	"github.com/nkarpov/sneakershop/internal/service"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, configuration)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}

	cacheClient := cache.New(
		configuration.REDIS_ADDR,
		configuration.REDIS_PASSWORD,
		configuration.REDIS_DB,
		configuration.CACHE_TTL,
	)
	if cacheClient == nil {
		logger.Warn("cache disabled: REDIS_ADDR not set, catalog reads go straight to the store")
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("kafka disabled: KAFKA_ADDRESS not set, invoice jobs will not be enqueued")
	}

	var searchSvc *search.Service
	if configuration.ES_URL != "" {
		esClient, err := search.NewClient(search.ClientConfig{
			URL:      configuration.ES_URL,
			User:     configuration.ES_USER,
			Password: configuration.ES_PASSWORD,
		})
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		searchSvc = &search.Service{ES: esClient, Index: configuration.ES_INDEX}
	} else {
		logger.Warn("search disabled: ES_URL not set")
	}

	pricing := service.PricingPolicy{
		TaxRateBP:        configuration.TAX_RATE_BP,
		ShippingFlatFee:  configuration.SHIPPING_FLAT_FEE,
		FreeShippingOver: configuration.FREE_SHIPPING_OVER,
	}

	catalogSvc := &service.CatalogService{
		Repo:     gormRepo,
		Cache:    cacheClient,
		Search:   searchSvc,
		Producer: producer,
		Topic:    configuration.CATALOG_TOPIC,
	}
	cartSvc := &service.CartService{Repo: gormRepo}
	checkoutSvc := &service.CheckoutService{
		Repo:         gormRepo,
		Verifier:     payment.NewVerifier(configuration.PAYMENT_SECRET),
		Cache:        cacheClient,
		Queue:        producer,
		InvoiceTopic: configuration.INVOICE_TOPIC,
		Pricing:      pricing,
	}
	orderSvc := &service.OrderService{Repo: gormRepo, Cache: cacheClient}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(appmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc},
		OrderHandler:   &httpserver.OrderHTTP{Checkout: checkoutSvc, Svc: orderSvc},
		JWTSecret:      []byte(configuration.JWT_SECRET),
	})

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", configuration.SERVER_PORT)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	if err := cacheClient.Close(); err != nil {
		log.Printf("cache close error: %v", err)
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"log"
	"net"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkarpov/sneakershop/internal/config"
	"github.com/nkarpov/sneakershop/internal/invoice"
	"github.com/nkarpov/sneakershop/internal/logging"
	"github.com/nkarpov/sneakershop/internal/mykafka"
	"github.com/nkarpov/sneakershop/internal/repo"
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

	if configuration.KAFKA_ADDRESS == "" {
		log.Fatal("KAFKA_ADDRESS is required for the invoice worker")
	}

	var mailer invoice.Mailer
	if configuration.SMTP_ADDR != "" {
		var auth smtp.Auth
		if user := os.Getenv("SMTP_USER"); user != "" {
			host, _, err := net.SplitHostPort(configuration.SMTP_ADDR)
			if err != nil {
				host = configuration.SMTP_ADDR
			}
			auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
		}
		mailer = &invoice.SMTPMailer{
			Addr: configuration.SMTP_ADDR,
			From: configuration.SMTP_FROM,
			Auth: auth,
		}
	} else {
		logger.Warn("SMTP_ADDR not set, invoices will be logged instead of mailed")
		mailer = &invoice.LogMailer{Log: logger}
	}

	reader := mykafka.NewReader(
		[]string{configuration.KAFKA_ADDRESS},
		configuration.INVOICE_TOPIC,
		configuration.INVOICE_GROUP,
	)

	processor := &invoice.Processor{
		Repo:        &repo.GormRepo{DB: db},
		Mailer:      mailer,
		Log:         logger,
		MaxAttempts: 5,
		Backoff:     time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("invoice worker starting", "topic", configuration.INVOICE_TOPIC, "group", configuration.INVOICE_GROUP)

	if err := processor.Run(ctx, reader); err != nil {
		logger.Error("worker stopped with error", "error", err)
	}

	if err := reader.Close(); err != nil {
		log.Printf("reader close error: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("worker stopped")
}

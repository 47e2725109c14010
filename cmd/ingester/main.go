package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"spimexapi/config"
	"spimexapi/internal/ingester"
	"spimexapi/internal/repository"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	repo := repository.NewGormTradingResultRepository(db)

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Kafka.Broker,
		"group.id":           cfg.Kafka.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		logger.Fatalf("Failed to create Kafka consumer: %v", err)
	}
	defer consumer.Close()

	if err := consumer.SubscribeTopics([]string{cfg.Kafka.Topic}, nil); err != nil {
		logger.Fatalf("Failed to subscribe to %s: %v", cfg.Kafka.Topic, err)
	}

	svc := ingester.New(consumer, repo, logger, ingester.Config{
		BatchSize:    cfg.Ingester.BatchSize,
		BatchTimeout: time.Duration(cfg.Ingester.BatchTimeoutSeconds) * time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		logger.Fatalf("Ingester stopped with error: %v", err)
	}
	logger.Info("Ingester shutdown complete")
}

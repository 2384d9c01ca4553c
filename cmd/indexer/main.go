package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-service/config"
	"github.com/oksasatya/user-service/internal/infrastructure/messaging"
	"github.com/oksasatya/user-service/internal/infrastructure/search"
	"github.com/oksasatya/user-service/pkg/helpers"
)

// Consumes user lifecycle events and keeps the Elasticsearch user
// directory in step with them.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitMQUserEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	index := search.NewUserIndex(es, cfg.ESUsersIndex)
	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue, 16)
	if err != nil {
		log.Fatalf("amqp consume: %v", err)
	}
	defer consumer.Close()

	projector := &messaging.Projector{Index: index, Logger: logger, Timeout: 15 * time.Second}
	done := make(chan struct{})
	go func() {
		projector.Run(ctx, consumer.Msgs)
		close(done)
	}()

	logger.Infof("indexer listening on queue=%s", cfg.RabbitMQUserEventsQueue)
	<-ctx.Done()
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// Command eventlog tails scrape events from Kafka and logs each one.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"populator/config"
	"populator/events"
	"populator/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Kafka.Enabled() {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer, err := events.NewConsumer(events.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
		Handler: newEventLogger(log),
		Logger:  log,
	})
	if err != nil {
		log.Fatal("Failed to create consumer", logger.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	if err := consumer.Start(ctx); err != nil {
		log.Fatal("Failed to start consumer", logger.Error(err))
	}

	<-ctx.Done()
	log.Info("Shutting down")
}

func newEventLogger(log logger.Logger) *events.TypedMessageHandler[events.ScrapeEvent] {
	return &events.TypedMessageHandler[events.ScrapeEvent]{
		Validate: func(ev *events.ScrapeEvent) bool {
			return ev.URL != ""
		},
		Process: func(_ context.Context, ev *events.ScrapeEvent) error {
			log.Info("Scrape event",
				logger.String("url", ev.URL),
				logger.String("selector", ev.Selector),
				logger.Int("count", ev.Count),
				logger.String("archive_key", ev.ArchiveKey),
				logger.Any("scraped_at", ev.ScrapedAt),
			)
			return nil
		},
		AlwaysMark: true,
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"populator/api"
	"populator/archive"
	"populator/config"
	"populator/events"
	"populator/extractor"
	"populator/fetcher"
	"populator/logger"
	"populator/scraper"
	"populator/storage"

	"github.com/gin-gonic/gin"
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

	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped", logger.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("Failed to close store", logger.Error(err))
		}
	}()

	ex, err := extractor.New(cfg.Selector)
	if err != nil {
		return err
	}

	svc := &scraper.Service{
		URL:       cfg.ScrapeURL,
		Fetcher:   fetcher.New(cfg.FetchTimeout),
		Extractor: ex,
		Store:     store,
		Log:       log.With(logger.String("component", "scraper")),
	}

	if cfg.S3.Enabled() {
		s3c, err := archive.NewS3(ctx, archive.S3Config{
			Region:       cfg.S3.Region,
			Profile:      cfg.S3.Profile,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
		if err != nil {
			log.Warn("Failed to init S3 client; page archiving disabled", logger.Error(err))
		} else {
			svc.Archiver = archive.NewPageArchiver(s3c, cfg.S3.Bucket, cfg.S3.Prefix)
			log.Info("Page archiving enabled", logger.String("bucket", cfg.S3.Bucket), logger.String("prefix", cfg.S3.Prefix))
		}
	}

	if cfg.Kafka.Enabled() {
		producer, err := events.NewProducer(events.ProducerConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		if err != nil {
			log.Warn("Failed to init Kafka producer; scrape events disabled", logger.Error(err))
		} else {
			defer func() { _ = producer.Close() }()
			svc.Publisher = producer
			log.Info("Scrape events enabled", logger.Strings("brokers", cfg.Kafka.Brokers), logger.String("topic", cfg.Kafka.Topic))
		}
	}

	router := api.NewRouter(api.Deps{
		Scraper:   svc,
		Store:     store,
		Log:       log.With(logger.String("component", "http")),
		PublicDir: cfg.PublicDir,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: router}
	errCh := make(chan error, 1)
	go func() {
		log.Info("App running",
			logger.String("addr", srv.Addr),
			logger.String("scrape_url", cfg.ScrapeURL),
			logger.String("store", cfg.StoreDriver),
			logger.Bool("archive", svc.Archiver != nil),
			logger.Bool("events", svc.Publisher != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (storage.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("Using in-memory store; data is lost on exit")
		return storage.NewMemoryStore(), nil
	}

	store, err := storage.NewMongoStore(ctx, storage.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	if err != nil {
		return nil, err
	}
	log.Info("Connected to MongoDB", logger.String("database", cfg.MongoDatabase))
	return store, nil
}

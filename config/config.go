package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server and its tools read from the environment
type Config struct {
	Port      string
	PublicDir string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	ScrapeURL    string
	Selector     string
	FetchTimeout time.Duration

	LogLevel       string
	LogDevelopment bool

	S3 S3Config

	Kafka KafkaConfig

	ShutdownTimeout time.Duration
}

// S3Config enables raw page archiving when Bucket is set
type S3Config struct {
	Bucket       string
	Region       string
	Profile      string
	Prefix       string
	UsePathStyle bool
}

// Enabled reports whether archiving is configured
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// KafkaConfig enables scrape event publishing when Brokers is non-empty
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Enabled reports whether event publishing is configured
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	fetchTimeout, err := parseDuration(get("FETCH_TIMEOUT", ""), DefaultFetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("FETCH_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := parseDuration(get("SHUTDOWN_TIMEOUT", ""), DefaultShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	mongoURI := get("MONGODB_URI", DefaultMongoURI)
	database := get("MONGODB_DATABASE", DatabaseFromURI(mongoURI))
	if database == "" {
		database = DefaultMongoDatabase
	}

	cfg := &Config{
		Port:            get("PORT", DefaultPort),
		PublicDir:       get("PUBLIC_DIR", DefaultPublicDir),
		StoreDriver:     strings.ToLower(get("STORE_DRIVER", DefaultStoreDriver)),
		MongoURI:        mongoURI,
		MongoDatabase:   database,
		ScrapeURL:       ResolveScrapeURL(get("SCRAPE_URL", DefaultScrapeTarget)),
		Selector:        get("SCRAPE_SELECTOR", DefaultSelector),
		FetchTimeout:    fetchTimeout,
		LogLevel:        get("LOG_LEVEL", DefaultLogLevel),
		LogDevelopment:  parseBool(get("LOG_DEVELOPMENT", "")),
		ShutdownTimeout: shutdownTimeout,
		S3: S3Config{
			Bucket:       get("S3_BUCKET", ""),
			Region:       get("S3_REGION", ""),
			Profile:      get("S3_PROFILE", ""),
			Prefix:       normalizePrefix(get("S3_PREFIX", "")),
			UsePathStyle: parseBool(get("S3_USE_PATH_STYLE", "")),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(get("KAFKA_BROKERS", "")),
			Topic:   get("KAFKA_TOPIC", DefaultKafkaTopic),
			GroupID: get("KAFKA_GROUP_ID", DefaultKafkaGroupID),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDriverMongo, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.ScrapeURL == "" {
		errs = append(errs, errors.New("scrape URL is empty"))
	}
	if c.Selector == "" {
		errs = append(errs, errors.New("scrape selector is empty"))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid PORT %q", c.Port))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}

// DatabaseFromURI returns the database path segment of a mongodb:// URI, or
// "" when the URI names none.
func DatabaseFromURI(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return ""
	}
	db := rest[slash+1:]
	if q := strings.IndexByte(db, '?'); q >= 0 {
		db = db[:q]
	}
	return db
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(raw)
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.Trim(prefix, "/") + "/"
}

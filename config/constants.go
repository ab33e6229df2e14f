package config

import "time"

// Defaults applied when the matching environment variable is unset
const (
	DefaultPort            = "3000"
	DefaultMongoURI        = "mongodb://localhost/unit18populator"
	DefaultMongoDatabase   = "unit18populator"
	DefaultStoreDriver     = StoreDriverMongo
	DefaultScrapeTarget    = "kc"
	DefaultSelector        = ".package"
	DefaultFetchTimeout    = 30 * time.Second
	DefaultPublicDir       = "public"
	DefaultLogLevel        = "info"
	DefaultKafkaTopic      = "articles.scraped"
	DefaultKafkaGroupID    = "populator-eventlog"
	DefaultShutdownTimeout = 10 * time.Second
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// ScrapePresets maps friendly names to scrape target URLs
var ScrapePresets = map[string]string{
	"kc": "https://www.kansascity.com/",
}

// ResolveScrapeURL returns the preset URL for name, or name itself when it is
// not a preset (assumed to be a direct URL).
func ResolveScrapeURL(name string) string {
	if url, ok := ScrapePresets[name]; ok {
		return url
	}
	return name
}

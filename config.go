package spyder

import (
	"net/url"
	"time"
)

// Config holds the settings of an ingestion or chat run.
type Config struct {
	SourceDocuments string          `yaml:"sourcedocuments"`
	Crawler         CrawlerConfig   `yaml:"crawler"`
	Embeddings      EmbeddingConfig `yaml:"embeddings"`
	TextSplitter    Splitter        `yaml:"textsplitter"`
	Store           StoreConfig     `yaml:"store"`
	Chat            ChatConfig      `yaml:"chat"`
	Log             LogConfig       `yaml:"log"`
	Ingest          IngestConfig    `yaml:"ingest"`
}

// CrawlerConfig configures the web and url workers.
type CrawlerConfig struct {
	Root              string          `yaml:"root"`
	Paths             []string        `yaml:"paths"`
	Site              string          `yaml:"site"`
	TableSelector     string          `yaml:"table_selector"`
	Concurrency       int             `yaml:"concurrency"`
	RateLimit         float64         `yaml:"rate_limit"`
	Timeout           time.Duration   `yaml:"timeout"`
	RetryDelays       []time.Duration `yaml:"retry_delays"`
	MaxDepth          int             `yaml:"max_depth"`
	MaxPages          int             `yaml:"max_pages"`
	UserAgent         string          `yaml:"user_agent"`
	DownloadDirectory string          `yaml:"download_directory"`
}

// EmbeddingConfig selects the embedding model.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	ModelName string `yaml:"model_name"`
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size"`
	CacheSize int    `yaml:"cache_size"`
}

// StoreConfig selects and configures the vector store.
type StoreConfig struct {
	Engine              string        `yaml:"engine"`
	PersistDirectory    string        `yaml:"persist_directory"`
	Collection          string        `yaml:"collection"`
	AnonymizedTelemetry bool          `yaml:"anonymized_telemetry"`
	WriteRetryDelay     time.Duration `yaml:"write_retry_delay"`
	Qdrant              QdrantConfig  `yaml:"qdrant"`
}

// QdrantConfig holds the connection settings of a Qdrant server.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// ChatConfig configures the chat command.
type ChatConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Results  int    `yaml:"results"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IngestConfig holds optional ingestion features.
type IngestConfig struct {
	CountTokens bool `yaml:"count_tokens"`
}

// Supported providers, engines and site strategies.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	EngineSQLite = "sqlite"
	EngineQdrant = "qdrant"
)

// Validate returns ECONFIG if the configuration cannot be used.
func (c *Config) Validate() error {
	if err := c.TextSplitter.Validate(); err != nil {
		return err
	}
	if c.Store.PersistDirectory == "" {
		return Errorf(ECONFIG, "store.persist_directory required")
	}
	if c.Store.Collection == "" {
		return Errorf(ECONFIG, "store.collection required")
	}
	switch c.Store.Engine {
	case EngineSQLite, EngineQdrant:
	default:
		return Errorf(ECONFIG, "unknown store.engine %q", c.Store.Engine)
	}
	if c.Embeddings.ModelName == "" {
		return Errorf(ECONFIG, "embeddings.model_name required")
	}
	if err := validateProvider("embeddings.provider", c.Embeddings.Provider); err != nil {
		return err
	}
	if err := validateProvider("chat.provider", c.Chat.Provider); err != nil {
		return err
	}
	if c.Embeddings.BatchSize <= 0 {
		return Errorf(ECONFIG, "embeddings.batch_size must be positive")
	}
	if c.Embeddings.CacheSize < 0 {
		return Errorf(ECONFIG, "embeddings.cache_size must not be negative")
	}
	if c.Crawler.Concurrency <= 0 {
		return Errorf(ECONFIG, "crawler.concurrency must be positive")
	}
	if c.Crawler.RateLimit <= 0 {
		return Errorf(ECONFIG, "crawler.rate_limit must be positive")
	}
	if c.Crawler.MaxDepth < 0 {
		return Errorf(ECONFIG, "crawler.max_depth must not be negative")
	}
	if c.Chat.Results <= 0 {
		return Errorf(ECONFIG, "chat.results must be positive")
	}
	return nil
}

// ValidateWeb returns ECONFIG unless the crawler root is an absolute
// http(s) URL.
func (c *CrawlerConfig) ValidateWeb() error {
	if c.Root == "" {
		return Errorf(ECONFIG, "crawler.root required for the web worker")
	}
	u, err := url.Parse(c.Root)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Errorf(ECONFIG, "crawler.root must be an http(s) URL, got %q", c.Root)
	}
	return nil
}

// SeedURLs returns the root joined with each configured path, or the root
// alone when no paths are set.
func (c *CrawlerConfig) SeedURLs() []string {
	if len(c.Paths) == 0 {
		return []string{c.Root}
	}
	seeds := make([]string, 0, len(c.Paths))
	for _, p := range c.Paths {
		seeds = append(seeds, c.Root+p)
	}
	return seeds
}

func validateProvider(key, provider string) error {
	switch provider {
	case ProviderOllama, ProviderGemini:
		return nil
	}
	return Errorf(ECONFIG, "unknown %s %q", key, provider)
}

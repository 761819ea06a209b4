package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Optional. When set, chunks and embeddings live in Postgres with
	// pgvector; otherwise the in-process index is used.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	ChatModel           string `envconfig:"CHAT_MODEL" default:"gpt-3.5-turbo"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`

	CorpusDir string `envconfig:"CORPUS_DIR" default:"corpus"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"paperchat-corpus"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"2048"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	TopK           int     `envconfig:"TOP_K" default:"5"`
	RelevanceFloor float32 `envconfig:"RELEVANCE_FLOOR" default:"0.25"`

	HistoryWindow     int           `envconfig:"HISTORY_WINDOW" default:"12"`
	GenerationTimeout time.Duration `envconfig:"GENERATION_TIMEOUT" default:"120s"`

	// Reject a second question on a busy session instead of queueing it.
	RejectConcurrent bool `envconfig:"REJECT_CONCURRENT" default:"false"`

	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	MaxSessions    int           `envconfig:"MAX_SESSIONS" default:"1000"`

	IngestOnStart bool `envconfig:"INGEST_ON_START" default:"false"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PAPERCHAT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env        string        `envconfig:"ENV" default:"production"`
	ServerPort int           `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret  string        `envconfig:"JWT_SECRET"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	Log        LogConfig
	Database   DatabaseConfig
	MQ         MQConfig
	Storage    StorageConfig
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"accounts"`
	Password string `envconfig:"DB_PASSWORD" default:"password"`
	DBName   string `envconfig:"DB_NAME" default:"accounts_db"`
	UseSSL   bool   `envconfig:"DB_USE_SSL" default:"false"`
}

// MQConfig selects the broker used for account lifecycle events.
// Backend is one of "none", "rabbitmq" or "pubsub".
type MQConfig struct {
	Backend  string `envconfig:"MQ_BACKEND" default:"none"`
	Channel  string `envconfig:"MQ_CHANNEL" default:"accounts.events"`
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string `envconfig:"RABBITMQ_URL"`
	QueueDurable    bool   `envconfig:"RABBITMQ_QUEUE_DURABLE" default:"true"`
	QueueAutoDelete bool   `envconfig:"RABBITMQ_QUEUE_AUTO_DELETE" default:"false"`
	PrefetchCount   int    `envconfig:"RABBITMQ_PREFETCH_COUNT" default:"0"`
}

type PubSubConfig struct {
	ProjectID          string `envconfig:"PUBSUB_PROJECT_ID"`
	CredentialsFile    string `envconfig:"PUBSUB_CREDENTIALS_FILE"`
	SubscriptionSuffix string `envconfig:"PUBSUB_SUBSCRIPTION_SUFFIX" default:"-sub"`
}

// StorageConfig selects the object store used by account exports.
// Backend is one of "minio" or "gcs".
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"minio"`
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"accounts"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type GCSConfig struct {
	Bucket          string `envconfig:"GCS_BUCKET"`
	ProjectID       string `envconfig:"GCS_PROJECT_ID"`
	CredentialsFile string `envconfig:"GCS_CREDENTIALS_FILE"`
}

const (
	MQBackendNone     = "none"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"

	StorageBackendMinio = "minio"
	StorageBackendGCS   = "gcs"
)

// LoadConfig reads configuration from the environment. In dev mode a local
// .env file is loaded first; variables already set take precedence.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.MQ.Backend = strings.ToLower(strings.TrimSpace(cfg.MQ.Backend))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))

	switch cfg.MQ.Backend {
	case "", MQBackendNone, MQBackendRabbitMQ, MQBackendPubSub:
	default:
		return Config{}, fmt.Errorf("unknown MQ_BACKEND %q", cfg.MQ.Backend)
	}
	switch cfg.Storage.Backend {
	case StorageBackendMinio, StorageBackendGCS:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.Storage.Backend)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// IsDev reports whether the process runs with ENV=dev.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

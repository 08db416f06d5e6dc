package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string `env:"PORT"           env-default:"8080"`
	PostgresDSN   string `env:"POSTGRES_DSN"   env-required:"true"`
	MongoURI      string `env:"MONGO_URI"      env-required:"true"`
	MongoDB       string `env:"MONGO_DB"       env-default:"learning_log"`
	RedisAddr     string `env:"REDIS_ADDR"     env-default:"redis:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"   env-default:"minio:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" env-default:""`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" env-default:""`
	MinioBucket    string `env:"MINIO_BUCKET"     env-default:"entry-attachments"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"    env-default:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}

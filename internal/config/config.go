package config

import (
	"os"
	"time"

	"github.com/Skotchmaster/storefront/pkg/config"
)

const (
	NotifyKafka    = "kafka"
	NotifyRabbitMQ = "rabbitmq"
	NotifyLog      = "log"
)

type ServiceConfig struct {
	config.Config

	AutoMigrate   bool
	SecureCookies bool

	NotifyTransport string
	NotifyTimeout   time.Duration

	KafkaOrderTopic string
	KafkaGroupID    string

	RabbitURL      string
	RabbitExchange string

	// RedisAddr empty disables Idempotency-Key handling.
	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration
}

func FromEnv() ServiceConfig {
	return ServiceConfig{
		Config: config.Load(),

		AutoMigrate:   config.EnvDefault("DB_AUTO_MIGRATE", "false") == "true",
		SecureCookies: config.EnvDefault("COOKIE_SECURE", "true") == "true",

		NotifyTransport: config.EnvDefault("NOTIFY_TRANSPORT", NotifyLog),
		NotifyTimeout:   config.EnvDurationDefault("NOTIFY_TIMEOUT", 5*time.Second),

		KafkaOrderTopic: config.EnvDefault("KAFKA_ORDER_TOPIC", "orders.confirmation"),
		KafkaGroupID:    config.EnvDefault("KAFKA_GROUP_ID", "storefront-mailer"),

		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		RabbitExchange: config.EnvDefault("RABBITMQ_EXCHANGE", "storefront.orders"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		IdempotencyTTL: config.EnvDurationDefault("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}

// Load reads the environment and exits when a required setting is missing.
func Load() ServiceConfig {
	cfg := FromEnv()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustOneOf(cfg.DBDriver, "DB_DRIVER", "postgres", "mysql")
	config.MustOneOf(cfg.NotifyTransport, "NOTIFY_TRANSPORT", NotifyKafka, NotifyRabbitMQ, NotifyLog)

	switch cfg.NotifyTransport {
	case NotifyKafka:
		config.MustNonEmpty(config.JoinCSV(cfg.KafkaBrokers), "KAFKA_BROKERS")
	case NotifyRabbitMQ:
		config.MustNonEmpty(cfg.RabbitURL, "RABBITMQ_URL")
	}

	return cfg
}

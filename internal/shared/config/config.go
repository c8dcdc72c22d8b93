package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config — полная конфигурация агента.
type Config struct {
	Worker   WorkerConfig
	Remote   RemoteConfig
	RabbitMQ MQConfig
	Tracking TrackingConfig
	Journal  JournalConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	// DemoMode переключает Remote Booking Service на встроенную демо-реализацию.
	// Единственное место, где флаг проверяется — remoteapi.New.
	DemoMode bool `envconfig:"DEMO_MODE" default:"false"`
}

type WorkerConfig struct {
	ID    string `envconfig:"WORKER_ID" required:"true"`
	Token string `envconfig:"WORKER_TOKEN"`
}

type RemoteConfig struct {
	BaseURL    string        `envconfig:"REMOTE_BASE_URL" default:"http://localhost:3000"`
	Timeout    time.Duration `envconfig:"REMOTE_TIMEOUT" default:"10s"`
	RetryCount int           `envconfig:"REMOTE_RETRY_COUNT" default:"0"`
}

type MQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"guest"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

type TrackingConfig struct {
	URL      string        `envconfig:"TRACKING_WS_URL" default:"ws://localhost:8080/tracking"`
	Interval time.Duration `envconfig:"TRACKING_INTERVAL" default:"5s"`
}

// JournalConfig — опциональный аудит-журнал переходов в Postgres.
// Пустой DSN отключает журнал.
type JournalConfig struct {
	DSN string `envconfig:"JOURNAL_DSN"`
}

type JWTConfig struct {
	Secret        string `envconfig:"JWT_SECRET" default:"dev_secret"`
	ExpiryMinutes int    `envconfig:"JWT_EXPIRY_MINUTES" default:"60"`
}

type HTTPConfig struct {
	Port int `envconfig:"AGENT_HTTP_PORT" default:"3100"`
}

// Load — загрузка из ENV.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

// Enabled сообщает, включен ли журнал переходов.
func (c JournalConfig) Enabled() bool {
	return c.DSN != ""
}

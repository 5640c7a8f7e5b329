package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"runtime"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BrokerMemory = "memory"
	BrokerRedis  = "redis"
)

type Config struct {
	DBHost            string        `env:"DB_HOST" env-default:"localhost"`
	DBPort            string        `env:"DB_PORT" env-default:"5432"`
	DBUser            string        `env:"DB_USER" env-default:"postgres"`
	DBPassword        string        `env:"DB_PASSWORD" env-default:"password"`
	DBName            string        `env:"DB_NAME" env-default:"money_transfers"`
	DBSSLMode         string        `env:"DB_SSLMODE" env-default:"disable"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	MigrateOnStart    bool          `env:"DB_MIGRATE" env-default:"true"`

	ServerPort string `env:"SERVER_PORT" env-default:"8080"`

	Broker        string `env:"BROKER" env-default:"memory"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	OrdersQueue    string `env:"ORDERS_QUEUE" env-default:"orders"`
	OrderConsumers int    `env:"ORDER_CONSUMERS" env-default:"0"`

	LogLevel slog.Level `env:"LOG_LEVEL" env-default:"INFO"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("env read error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Broker != BrokerMemory && c.Broker != BrokerRedis {
		return fmt.Errorf("unsupported broker %q", c.Broker)
	}
	if c.OrderConsumers < 0 {
		return fmt.Errorf("ORDER_CONSUMERS must not be negative, got %d", c.OrderConsumers)
	}
	if c.OrdersQueue == "" {
		return fmt.Errorf("ORDERS_QUEUE must not be empty")
	}
	return nil
}

// GetDBConnectionString returns the lib/pq keyword form.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// GetDatabaseURL returns the URL form used by migrations.
func (c *Config) GetDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// ConsumerCount defaults to one session per CPU.
func (c *Config) ConsumerCount() int {
	if c.OrderConsumers > 0 {
		return c.OrderConsumers
	}
	return runtime.NumCPU()
}

package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/shop/internal/log"
)

type Application struct {
	Env       string        `mapstructure:"env"        json:"env"`
	Host      string        `mapstructure:"host"       json:"host"`
	SecretKey string        `mapstructure:"secret_key" json:"-"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"  json:"token_ttl"`
	Port      int           `mapstructure:"port"       json:"port"`
	HashCost  int           `mapstructure:"hash_cost"  json:"hash_cost"`
}

type Database struct {
	Name           string        `mapstructure:"name"            json:"name"`
	Host           string        `mapstructure:"host"            json:"host"`
	MigrationPath  string        `mapstructure:"migration_path"  json:"migration_path"`
	Password       string        `mapstructure:"password"        json:"-"`
	Username       string        `mapstructure:"username"        json:"username"`
	Timeout        time.Duration `mapstructure:"timeout"         json:"timeout"`
	MaxConnections int32         `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16        `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string        `mapstructure:"host"     json:"host"`
	Password string        `mapstructure:"password" json:"-"`
	TTL      time.Duration `mapstructure:"ttl"      json:"ttl"`
	Database int           `mapstructure:"database" json:"database"`
	Port     uint16        `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type Event struct {
	Driver  string   `mapstructure:"driver"  json:"driver"`
	Topic   string   `mapstructure:"topic"   json:"topic"`
	Brokers []string `mapstructure:"brokers" json:"brokers"`
	GroupID string   `mapstructure:"group_id" json:"group_id"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Event       `mapstructure:"event"       json:"event"`
}

const (
	EventDriverRedis = "redis"
	EventDriverKafka = "kafka"
)

var (
	once   sync.Once
	config *Config
)

func (o Otel) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.token_ttl", 7*24*time.Hour)
	v.SetDefault("application.hash_cost", 10)
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.migration_path", "file://migrations")
	v.SetDefault("db.timeout", 5*time.Second)
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.min_connections", 2)
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("event.driver", EventDriverRedis)
	v.SetDefault("event.topic", "orders")
	v.SetDefault("event.group_id", "notification")
}

// Load reads <path>/<filename>.yaml, overridden by environment variables such as DB_HOST.
func Load(c context.Context, path string, filename string) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config Load").
		Str(log.KeyFilename, filename).
		Logger()

	v := viper.New()
	v.SetConfigName(filename)
	v.AddConfigPath(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	if err := v.ReadInConfig(); err != nil {
		err = fmt.Errorf("failed reading config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("read config")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		err = fmt.Errorf("failed unmarshaling config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("unmarshaled config")

	return &cfg, nil
}

func Get(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "config Get").
			Str(log.KeyProcess, "init config").
			Logger()

		cfg, err := Load(c, "./env", filename)
		if err != nil {
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("initialized config")
	})
	return config
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Analytics   AnalyticsConfig `mapstructure:"analytics"`
	Tracing     TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// LedgerPartitions is the partition count of the ledger tables; transfer
	// lookups prune to crc32(address) % LedgerPartitions.
	LedgerPartitions int `mapstructure:"ledger_partitions"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AnalyticsConfig struct {
	// FillLookbackDays is the margin fetched before a quote window to seed
	// forward-filling.
	FillLookbackDays int `mapstructure:"fill_lookback_days"`
	MinWorkers       int `mapstructure:"min_workers"`
	MaxWorkers       int `mapstructure:"max_workers"`
	// BenchmarkCacheTTL is how long cached benchmark metrics live; quotes for
	// closed days never change, so the default is generous.
	BenchmarkCacheTTL string `mapstructure:"benchmark_cache_ttl"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Analytics.BenchmarkCacheTTL != "" {
		if _, err := time.ParseDuration(config.Analytics.BenchmarkCacheTTL); err != nil {
			return nil, fmt.Errorf("invalid benchmark cache TTL: %w", err)
		}
	}
	if config.Database.LedgerPartitions <= 0 {
		return nil, fmt.Errorf("ledger_partitions must be positive, got %d", config.Database.LedgerPartitions)
	}
	if config.Analytics.MinWorkers > config.Analytics.MaxWorkers {
		return nil, fmt.Errorf("min_workers %d exceeds max_workers %d",
			config.Analytics.MinWorkers, config.Analytics.MaxWorkers)
	}

	return &config, nil
}

// CacheTTL returns the parsed benchmark cache TTL.
func (c AnalyticsConfig) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.BenchmarkCacheTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "chainstats")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.ledger_partitions", 1000)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("analytics.fill_lookback_days", 30)
	viper.SetDefault("analytics.min_workers", 2)
	viper.SetDefault("analytics.max_workers", 20)
	viper.SetDefault("analytics.benchmark_cache_ttl", "24h")

	viper.SetDefault("tracing.enabled", false)
}

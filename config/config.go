package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix : STOCKWATCH_SERVER_PORT overrides server.port and so on
const EnvPrefix = "STOCKWATCH"

type Config struct {
	Server   ServerConfig
	Supplier SupplierConfig
	Redis    RedisConfig
	Warm     WarmConfig
	Log      LogConfig
	Chart    ChartConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port string
}

// SupplierConfig : the data backend serving integrated-data and detailed-info
type SupplierConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Retries  int
	Trace    bool
	Backfill bool
}

// RedisConfig : response cache, disabled unless Enabled is set
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// WarmConfig : cron (with seconds) refreshing Codes into the cache
type WarmConfig struct {
	Cron    string
	Codes   []string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type ChartConfig struct {
	Width  int
	Height int
}

// SessionConfig : sessions untouched for Idle are dropped every SweepInterval
type SessionConfig struct {
	Idle          time.Duration
	SweepInterval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")

	v.SetDefault("supplier.base_url", "http://localhost:8000/api")
	v.SetDefault("supplier.timeout", 10*time.Second)
	v.SetDefault("supplier.retries", 2)
	v.SetDefault("supplier.trace", false)
	v.SetDefault("supplier.backfill", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "stockwatch:")
	v.SetDefault("redis.ttl", 30*time.Minute)

	v.SetDefault("warm.cron", "0 30 15 * * 1-5")
	v.SetDefault("warm.codes", []string{})
	v.SetDefault("warm.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("chart.width", 1200)
	v.SetDefault("chart.height", 800)

	v.SetDefault("session.idle", 30*time.Minute)
	v.SetDefault("session.sweep_interval", time.Minute)
}

// Load : defaults, then the optional file at path (skipped when empty or
// missing), then STOCKWATCH_* environment variables
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	// 1) optional config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	// 2) environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Supplier: SupplierConfig{
			BaseURL:  v.GetString("supplier.base_url"),
			Timeout:  v.GetDuration("supplier.timeout"),
			Retries:  v.GetInt("supplier.retries"),
			Trace:    v.GetBool("supplier.trace"),
			Backfill: v.GetBool("supplier.backfill"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Warm: WarmConfig{
			Cron:    v.GetString("warm.cron"),
			Codes:   splitList(v.GetStringSlice("warm.codes")),
			Timeout: v.GetDuration("warm.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Chart: ChartConfig{
			Width:  v.GetInt("chart.width"),
			Height: v.GetInt("chart.height"),
		},
		Session: SessionConfig{
			Idle:          v.GetDuration("session.idle"),
			SweepInterval: v.GetDuration("session.sweep_interval"),
		},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var missing []string
	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Supplier.BaseURL == "" {
		missing = append(missing, "supplier.base_url")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		missing = append(missing, "redis.addr")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		missing = append(missing, "chart.width/chart.height")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// splitList : env values arrive as one comma separated string
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

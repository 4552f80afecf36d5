// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "TASKFLOW"
	EnvConfigFile = "TASKFLOW_CONFIG"
	defaultFile   = "config.yml"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Local      LocalConfig      `mapstructure:"local"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Activity   ActivityConfig   `mapstructure:"activity"`
	Insight    InsightConfig    `mapstructure:"insight"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Digest     DigestConfig     `mapstructure:"digest"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // запросов в минуту с одного IP, 0 - без лимита
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LocalConfig: пустой путь - зеркало в памяти.
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type             string        `mapstructure:"type"` // "remote", "local" или "auto"
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type ScheduleConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type ActivityConfig struct {
	QueueSize  int `mapstructure:"queue_size"`
	MaxRetries int `mapstructure:"max_retries"`
}

type InsightConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig: пустой addr отключает кэш инсайтов.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DigestConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	At      string `mapstructure:"at"`
	Days    int    `mapstructure:"days"`
}

const (
	RepositoryRemote = "remote"
	RepositoryLocal  = "local"
	RepositoryAuto   = "auto"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("local.path", "")

	v.SetDefault("logging.development", false)

	v.SetDefault("repository.type", RepositoryAuto)
	v.SetDefault("repository.operation_timeout", 5*time.Second)

	v.SetDefault("schedule.timezone", "UTC")

	v.SetDefault("activity.queue_size", 256)
	v.SetDefault("activity.max_retries", 3)

	v.SetDefault("insight.api_key", "")
	v.SetDefault("insight.model", "gemini-2.5-flash")
	v.SetDefault("insight.timeout", 15*time.Second)
	v.SetDefault("insight.cache_ttl", time.Hour)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("digest.enabled", false)
	v.SetDefault("digest.at", "21:00")
	v.SetDefault("digest.days", 7)
}

// Load читает config.yml (путь из TASKFLOW_CONFIG), поверх - переменные TASKFLOW_<SECTION>_<KEY>.
// Отсутствующий файл не ошибка: хватает значений по умолчанию и окружения.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if !explicit {
		path = defaultFile
	}
	return load(path, explicit)
}

func load(path string, required bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound), !required && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("ошибка чтения %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryRemote, RepositoryLocal, RepositoryAuto:
	default:
		return fmt.Errorf("repository.type: неизвестный тип %q", c.Repository.Type)
	}
	if c.Repository.Type == RepositoryRemote && c.Database.URL == "" {
		return errors.New("database.url обязателен для repository.type=remote")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

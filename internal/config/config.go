package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	UI         UIConfig         `mapstructure:"ui"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// requests per minute per client ip, 0 disables the limiter
	RateLimit      int      `mapstructure:"rate_limit"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	Name           string        `mapstructure:"name"`
	Collection     string        `mapstructure:"collection"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ConnectRetries int           `mapstructure:"connect_retries"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

const (
	RepositoryMongo    = "mongo"
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"
)

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "mongo", "postgres" or "inmemory"
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type UIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// base URL of a remote API for the board; empty means the board calls the service in process
	APIURL string `mapstructure:"api_url"`
}

// Load reads config.yml from the working directory (or the file named by
// TASKS_CONFIG) and lets TASKS_* environment variables override any key,
// e.g. TASKS_DATABASE_URL. PORT and MONGO_URI are honoured as well.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("TASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("config"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.BindEnv("server.port", "TASKS_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("database.url", "TASKS_DATABASE_URL", "MONGO_URI"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.name", "taskDB")
	v.SetDefault("database.collection", "tasks")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.connect_retries", 5)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", RepositoryMongo)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "task-api")

	v.SetDefault("ui.enabled", true)
	v.SetDefault("ui.api_url", "")
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryMongo, RepositoryPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the %q repository (set TASKS_DATABASE_URL or MONGO_URI)", c.Repository.Type)
		}
	case RepositoryInMemory:
	default:
		return fmt.Errorf("unknown repository type %q", c.Repository.Type)
	}

	if c.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

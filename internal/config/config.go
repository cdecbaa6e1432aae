package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Web      WebConfig      `mapstructure:"web"`
	Client   ClientConfig   `mapstructure:"client"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,origin"`
}

type DatabaseConfig struct {
	Driver               string            `mapstructure:"driver" validate:"oneof=mysql sqlite"`
	Host                 string            `mapstructure:"host" validate:"required_if=Driver mysql"`
	Port                 int               `mapstructure:"port"`
	Database             string            `mapstructure:"database" validate:"required_if=Driver mysql"`
	Username             string            `mapstructure:"username"`
	Password             string            `mapstructure:"password"`
	TLS                  bool              `mapstructure:"tls"`
	Params               map[string]string `mapstructure:"params"`
	Path                 string            `mapstructure:"path" validate:"required_if=Driver sqlite"`
	MaxOpenConns         int               `mapstructure:"max_open_conns"`
	MaxIdleConns         int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime      int               `mapstructure:"conn_max_lifetime_seconds"`
	ConnectRetryAttempts uint              `mapstructure:"connect_retry_attempts" validate:"min=1"`
}

type SearchConfig struct {
	// ResultLimit caps the number of entries a single search returns.
	ResultLimit int           `mapstructure:"result_limit" validate:"min=1,max=100"`
	CacheSize   int           `mapstructure:"cache_size" validate:"min=0"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" validate:"min=0"`
}

type WebConfig struct {
	Debounce       time.Duration `mapstructure:"debounce" validate:"min=0"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=0"`
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pacha")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "malayalam_dictionary.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "malayalam_dictionary")
	v.SetDefault("database.username", "user")
	v.SetDefault("database.connect_retry_attempts", 5)
	v.SetDefault("search.result_limit", 20)
	v.SetDefault("search.cache_size", 512)
	v.SetDefault("search.cache_ttl", "1m")
	v.SetDefault("web.debounce", "300ms")
	v.SetDefault("web.request_timeout", "10s")
	v.SetDefault("client.base_url", "http://localhost:5000")
	v.SetDefault("client.timeout", "10s")

	// Secrets and deployment specifics come from the environment only
	if err := v.BindEnv("database.password", "PACHA_DATABASE_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind PACHA_DATABASE_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("database.driver", "PACHA_DATABASE_DRIVER"); err != nil {
		return nil, fmt.Errorf("failed to bind PACHA_DATABASE_DRIVER environment variable: %w", err)
	}
	if err := v.BindEnv("database.path", "PACHA_DATABASE_PATH"); err != nil {
		return nil, fmt.Errorf("failed to bind PACHA_DATABASE_PATH environment variable: %w", err)
	}
	if err := v.BindEnv("database.host", "PACHA_DATABASE_HOST"); err != nil {
		return nil, fmt.Errorf("failed to bind PACHA_DATABASE_HOST environment variable: %w", err)
	}
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

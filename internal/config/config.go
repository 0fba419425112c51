package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment    DeploymentConfig   `validate:"required"`
	Server        ServerConfig       `validate:"required"`
	Logging       LoggingConfig      `validate:"required"`
	Backend       BackendConfig      `validate:"required"`
	Sync          SyncConfig         `validate:"required"`
	Storage       StorageConfig      `validate:"required"`
	Notifications NotificationConfig `validate:"required"`
	PubSub        PubSubConfig
	Resume        ResumeConfig
	Sentry        SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

// BackendConfig points at the authoritative applicant API
type BackendConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	RetryMax int           `mapstructure:"retry_max" validate:"gte=0"`
	// Token seeds the session store when no credential is persisted yet
	Token string `mapstructure:"token"`
}

type SyncConfig struct {
	Interval      time.Duration `mapstructure:"interval" validate:"required"`
	WatchStore    bool          `mapstructure:"watch_store"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

type StorageConfig struct {
	Driver       types.StorageDriver `mapstructure:"driver" validate:"required"`
	Path         string              `mapstructure:"path" validate:"required_if=Driver sqlite"`
	BusyRetryMax uint64              `mapstructure:"busy_retry_max"`
}

type NotificationConfig struct {
	MaxEntries int `mapstructure:"max_entries" validate:"required,gt=0"`
}

type PubSubConfig struct {
	OutputBuffer int64 `mapstructure:"output_buffer"`
}

type ResumeConfig struct {
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Bucket    string `mapstructure:"bucket" validate:"required_if=Enabled true"`
	Region    string `mapstructure:"region"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/hiretrack")

	// Set up environment variables support
	v.SetEnvPrefix("HIRETRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		fmt.Printf("No config file found, using defaults and environment\n")
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults mirrors GetDefaultConfig so every key is known to viper and can
// be overridden from the environment alone
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.retry_max", d.Backend.RetryMax)
	v.SetDefault("backend.token", "")
	v.SetDefault("sync.interval", d.Sync.Interval)
	v.SetDefault("sync.watch_store", d.Sync.WatchStore)
	v.SetDefault("sync.watch_debounce", d.Sync.WatchDebounce)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.busy_retry_max", d.Storage.BusyRetryMax)
	v.SetDefault("notifications.max_entries", d.Notifications.MaxEntries)
	v.SetDefault("pubsub.output_buffer", d.PubSub.OutputBuffer)
	v.SetDefault("resume.dir", d.Resume.Dir)
	v.SetDefault("resume.s3.enabled", false)
	v.SetDefault("sentry.enabled", false)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or the CLI without a config file
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Backend: BackendConfig{
			BaseURL:  "http://localhost:8000/api",
			Timeout:  30 * time.Second,
			RetryMax: 2,
		},
		Sync: SyncConfig{
			Interval:      10 * time.Second,
			WatchDebounce: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Driver:       types.StorageDriverMemory,
			Path:         "hiretrack.db",
			BusyRetryMax: 5,
		},
		Notifications: NotificationConfig{MaxEntries: 50},
		PubSub:        PubSubConfig{OutputBuffer: 100},
		Resume:        ResumeConfig{Dir: "."},
	}
}

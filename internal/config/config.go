package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// Store drivers accepted in store.driver.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// SMS transports accepted in sms.transport.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
)

// ---- Root ----

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Intake    IntakeConfig    `mapstructure:"intake"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Store     StoreConfig     `mapstructure:"store"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	SMS       SMSConfig       `mapstructure:"sms"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr         string `mapstructure:"addr"`
	MaxBodyBytes string `mapstructure:"max_body_bytes"` // echo BodyLimit syntax, e.g. "1M"
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type WebhookConfig struct {
	Secret string `mapstructure:"secret"`
}

type IntakeConfig struct {
	RequireTelephone bool `mapstructure:"require_telephone"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"` // empty = listing is open
}

type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	FilePath string         `mapstructure:"file_path"`
	Database DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

type SMSConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	Transport string           `mapstructure:"transport"`
	Timeout   time.Duration    `mapstructure:"timeout"`
	Providers []ProviderConfig `mapstructure:"providers"`
	Kafka     KafkaConfig      `mapstructure:"kafka"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

type ProviderConfig struct {
	Name      string        `mapstructure:"name"`
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Path      string        `mapstructure:"path"`
	APIKey    string        `mapstructure:"api_key"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (ENROLL_*).
// A path that cannot be read or parsed is an error.
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// env override (ENROLL_*), nested keys use "_": ENROLL_WEBHOOK_SECRET
	v.SetEnvPrefix("ENROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Webhook.Secret) == "" {
		errs = append(errs, errors.New("webhook.secret is required"))
	}

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.FilePath == "" {
			errs = append(errs, errors.New("store.file_path is required for the file driver"))
		}
	case DriverSQLite, DriverPostgres, DriverMySQL:
		if c.Store.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("store.database.dsn is required for the %s driver", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	if c.SMS.Enabled {
		switch c.SMS.Transport {
		case TransportHTTP:
		case TransportKafka:
			if len(c.SMS.Kafka.Brokers) == 0 || c.SMS.Kafka.Topic == "" {
				errs = append(errs, errors.New("sms.kafka.brokers and sms.kafka.topic are required for the kafka transport"))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown sms.transport %q", c.SMS.Transport))
		}
	}

	return errors.Join(errs...)
}

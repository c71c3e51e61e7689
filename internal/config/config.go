// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | sqlite
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

type StudyConfig struct {
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	SeedBatchMin int    `mapstructure:"seed_batch_min"`
	Timezone     string `mapstructure:"timezone"`
}

// Location は連続学習日数の判定に使うタイムゾーンを返します。不正な指定は UTC 扱い。
func (c StudyConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("Invalid study timezone, falling back to UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

type AuthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type JWTConfig struct {
	SecretKey      string        `mapstructure:"secret_key"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type RateLimitConfig struct {
	AuthRequestsPerMinute int `mapstructure:"auth_requests_per_minute"`
	AuthBurst             int `mapstructure:"auth_burst"`
}

type GeneratorConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type MailerConfig struct {
	Type string `mapstructure:"type"` // log | smtp | ses
	From string `mapstructure:"from"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // static_credentials | iam_role
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	From            string `mapstructure:"from"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	App       AppConfig       `mapstructure:"app"`
	Study     StudyConfig     `mapstructure:"study"`
	Auth      AuthConfig      `mapstructure:"auth"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Mailer    MailerConfig    `mapstructure:"mailer"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	SES       SESConfig       `mapstructure:"ses"`
}

var Cfg Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)

	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_idle_conns", DefaultMaxIdleConns)
	v.SetDefault("database.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", DefaultConnMaxLifetime)

	v.SetDefault("log.level", DefaultLogLevel)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-User-Email"})
	v.SetDefault("cors.exposed_headers", []string{"Link", "Retry-After"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("app.name", AppName)
	v.SetDefault("app.frontend_url", "http://localhost:3000")

	v.SetDefault("study.default_limit", DefaultStudyLimit)
	v.SetDefault("study.max_limit", DefaultStudyMaxLimit)
	v.SetDefault("study.seed_batch_min", DefaultSeedBatchMin)
	v.SetDefault("study.timezone", DefaultStudyTimezone)

	v.SetDefault("auth.enabled", DefaultAuthEnabled)

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.access_token_ttl", DefaultAccessTokenTTL)

	v.SetDefault("rate_limit.auth_requests_per_minute", DefaultAuthRequestsPerMinute)
	v.SetDefault("rate_limit.auth_burst", DefaultAuthBurst)

	v.SetDefault("generator.enabled", false)
	v.SetDefault("generator.api_key", "")
	v.SetDefault("generator.base_url", DefaultGeneratorBaseURL)
	v.SetDefault("generator.model", DefaultGeneratorModel)
	v.SetDefault("generator.timeout", DefaultGeneratorTimeout)
	v.SetDefault("generator.max_retries", DefaultGeneratorMaxRetries)
	v.SetDefault("generator.retry_backoff", DefaultGeneratorRetryBackoff)

	v.SetDefault("mailer.type", DefaultMailerType)
	v.SetDefault("mailer.from", DefaultMailFrom)
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 1025)
	v.SetDefault("smtp.from", DefaultMailFrom)
	v.SetDefault("ses.region", "ap-northeast-1")
	v.SetDefault("ses.auth_type", "iam_role")
	v.SetDefault("ses.access_key_id", "")
	v.SetDefault("ses.secret_access_key", "")
	v.SetDefault("ses.from", DefaultMailFrom)
}

// Load は path 配下の config.yaml と APP_ 接頭辞の環境変数から設定を読み込みます。
// 設定ファイルが無い場合はデフォルト値と環境変数だけで組み立てます。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	// 例: APP_DATABASE_URL -> database.url
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: read config: %w", err)
		}
		slog.Warn("Config file not found. Using defaults and environment variables.", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig は Load の結果をパッケージ変数 Cfg に保持します。
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Cfg = *cfg

	slog.Info("Config loaded successfully",
		"server_port", Cfg.Server.Port,
		"database_driver", Cfg.Database.Driver,
		"auth_enabled", Cfg.Auth.Enabled,
		"study_default_limit", Cfg.Study.DefaultLimit,
		"generator_enabled", Cfg.Generator.Enabled,
		"mailer_type", Cfg.Mailer.Type,
	)
	return nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}
	if c.Study.DefaultLimit < 1 || c.Study.MaxLimit < c.Study.DefaultLimit {
		return fmt.Errorf("config: invalid study limits (default_limit=%d, max_limit=%d)", c.Study.DefaultLimit, c.Study.MaxLimit)
	}
	if c.Auth.Enabled && c.JWT.SecretKey == "" {
		slog.Warn("Auth is enabled but jwt.secret_key is empty. Set APP_JWT_SECRET_KEY.")
	}
	return nil
}

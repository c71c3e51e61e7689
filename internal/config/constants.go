// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "SkillSync"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultServerPort   = ":8080"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second

	DefaultDatabaseDriver  = "postgres"
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour

	DefaultLogLevel    = "info"
	DefaultAuthEnabled = true

	DefaultStudyLimit    = 20
	DefaultStudyMaxLimit = 100
	DefaultSeedBatchMin  = 10
	DefaultStudyTimezone = "UTC"

	DefaultAccessTokenTTL = 24 * time.Hour

	DefaultAuthRequestsPerMinute = 5
	DefaultAuthBurst             = 5

	DefaultGeneratorBaseURL      = "https://api.openai.com/v1"
	DefaultGeneratorModel        = "gpt-3.5-turbo"
	DefaultGeneratorTimeout      = 30 * time.Second
	DefaultGeneratorMaxRetries   = 3
	DefaultGeneratorRetryBackoff = time.Second

	DefaultMailerType = "log"
	DefaultMailFrom   = "no-reply@skillsync.local"
)

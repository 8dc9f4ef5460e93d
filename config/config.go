package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

const EnvPrefix = "WORDLE"

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	RA        RAConfig
	WordAPI   WordAPIConfig
	Prize     PrizeConfig
	Archive   ArchiveConfig
	Log       LogConfig
	EventName string
}

type DatabaseConfig struct {
	Driver string // postgres | sqlite
	DSN    string
}

type ServerConfig struct {
	Addr         string
	ServiceToken string
	// RunScheduler is off on replicas that should not run the daily jobs.
	RunScheduler bool
}

type RAConfig struct {
	BaseURL   string
	Username  string
	WebAPIKey string
	Timeout   time.Duration
}

type WordAPIConfig struct {
	URL     string
	Timeout time.Duration
}

type PrizeConfig struct {
	WebhookURL   string
	PollInterval time.Duration
	BatchSize    int
}

// ArchiveConfig points at a Cloudflare R2 bucket. Archiving is disabled when
// any of the fields is empty.
type ArchiveConfig struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

func (a ArchiveConfig) Enabled() bool {
	return a.AccountID != "" && a.AccessKeyID != "" && a.AccessKeySecret != "" && a.Bucket != ""
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and then the WORDLE_* environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(NewEnvLoader(EnvPrefix))
}

func FromEnv(env *EnvLoader) (*Config, error) {
	dsn, err := env.GetStringRequired("DATABASE_URL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver: env.GetString("DB_DRIVER", "postgres"),
			DSN:    dsn,
		},
		Server: ServerConfig{
			Addr:         env.GetString("HTTP_ADDR", ":5200"),
			ServiceToken: env.GetString("SERVICE_TOKEN", ""),
			RunScheduler: env.GetBool("RUN_SCHEDULER", true),
		},
		RA: RAConfig{
			BaseURL:   env.GetString("RA_API_BASE_URL", "https://retroachievements.org/API"),
			Username:  env.GetString("RA_USERNAME", "RABot"),
			WebAPIKey: env.GetString("RA_WEB_API_KEY", ""),
			Timeout:   env.GetDuration("RA_TIMEOUT", 10*time.Second),
		},
		WordAPI: WordAPIConfig{
			URL:     env.GetString("WORD_API_URL", "https://wordle-api.vercel.app/api/wordle"),
			Timeout: env.GetDuration("WORD_API_TIMEOUT", 5*time.Second),
		},
		Prize: PrizeConfig{
			WebhookURL:   env.GetString("PRIZE_WEBHOOK_URL", ""),
			PollInterval: env.GetDuration("PRIZE_POLL_INTERVAL", 5*time.Minute),
			BatchSize:    env.GetInt("PRIZE_BATCH_SIZE", 50),
		},
		Archive: ArchiveConfig{
			AccountID:       env.GetString("R2_ACCOUNT_ID", ""),
			AccessKeyID:     env.GetString("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: env.GetString("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          env.GetString("R2_BUCKET_NAME", ""),
		},
		Log: LogConfig{
			Level:  env.GetString("LOG_LEVEL", "info"),
			Format: env.GetString("LOG_FORMAT", "json"),
		},
		EventName: env.GetString("EVENT_NAME", "Wordle Achievement Event"),
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported %s_DB_DRIVER %q (want postgres or sqlite)", EnvPrefix, cfg.Database.Driver)
	}

	return cfg, nil
}

// RequireServer checks the settings only `serve` needs.
func (c *Config) RequireServer() error {
	if c.Server.ServiceToken == "" {
		return fmt.Errorf("%s_SERVICE_TOKEN is not set; the chat layer cannot authenticate", EnvPrefix)
	}
	if c.RA.WebAPIKey == "" {
		return fmt.Errorf("%s_RA_WEB_API_KEY is not set", EnvPrefix)
	}
	return nil
}

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/club-leaderboard/db"
	"github.com/danielhkuo/club-leaderboard/judge"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// External judge
	JudgeBaseURL         string
	JudgeSessionCookie   string
	JudgeCookieExpiresAt time.Time
	JudgeTimeout         time.Duration

	// Sync trigger and schedule
	SyncSecret   string
	SyncInterval time.Duration

	// Optional infrastructure
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadDotEnv loads variables from a .env file without overriding ones already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var cookieExpires, judgeTimeout, syncInterval, kafkaBrokers string

	fs := flag.NewFlagSet("club-leaderboard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	fs.StringVar(&cfg.JudgeBaseURL, "judge-url", "", "Judge base URL")
	fs.StringVar(&cfg.JudgeSessionCookie, "judge-cookie", "", "Judge session cookie (prefer env)")
	fs.StringVar(&cookieExpires, "judge-cookie-expires", "", "Judge cookie expiry (RFC3339)")
	fs.StringVar(&judgeTimeout, "judge-timeout", "", "Judge request timeout")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SyncSecret, "sync-secret", "", "Sync trigger token secret (prefer env)")
	fs.StringVar(&syncInterval, "sync-interval", "", "In-process sync interval (0 disables)")

	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for the sync lock")
	fs.StringVar(&kafkaBrokers, "kafka-brokers", "", "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", "", "Kafka topic for leaderboard events")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = db.TypeSQLite
		}
	}
	if cfg.DatabaseType != db.TypeSQLite && cfg.DatabaseType != db.TypePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	cfg.JudgeBaseURL = orEnv(cfg.JudgeBaseURL, "JUDGE_BASE_URL")
	if cfg.JudgeBaseURL == "" {
		cfg.JudgeBaseURL = judge.DefaultBaseURL
	}
	cfg.JudgeSessionCookie = orEnv(cfg.JudgeSessionCookie, "JUDGE_SESSION_COOKIE")

	if s := orEnv(cookieExpires, "JUDGE_COOKIE_EXPIRES_AT"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid judge cookie expiry: %w", err)
		}
		cfg.JudgeCookieExpiresAt = t
	}

	cfg.JudgeTimeout = judge.DefaultTimeout
	if s := orEnv(judgeTimeout, "JUDGE_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid judge timeout %q", s)
		}
		cfg.JudgeTimeout = d
	}

	if s := orEnv(syncInterval, "SYNC_INTERVAL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid sync interval %q", s)
		}
		cfg.SyncInterval = d
	}

	cfg.RedisAddr = orEnv(cfg.RedisAddr, "REDIS_ADDR")

	if s := orEnv(kafkaBrokers, "KAFKA_BROKERS"); s != "" {
		for _, b := range strings.Split(s, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = orEnv(cfg.KafkaTopic, "KAFKA_TOPIC")
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "leaderboard.updated"
	}

	// Secrets - MUST be provided
	cfg.SyncSecret = orEnv(cfg.SyncSecret, "SYNC_TOKEN_SECRET")
	if cfg.SyncSecret == "" {
		return Config{}, errors.New("SYNC_TOKEN_SECRET required")
	}

	return cfg, nil
}

func orEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}

// TokenConfig is the input of the token subcommand
type TokenConfig struct {
	SyncSecret string
	Subject    string
	TTL        time.Duration
}

// ParseTokenFlags parses the arguments following "token"
func ParseTokenFlags(args []string) (TokenConfig, error) {
	var cfg TokenConfig

	fs := flag.NewFlagSet("club-leaderboard token", flag.ContinueOnError)
	fs.StringVar(&cfg.SyncSecret, "sync-secret", "", "Sync trigger token secret (prefer env)")
	fs.StringVar(&cfg.Subject, "sub", "cron", "Token subject, shown in sync logs")
	fs.DurationVar(&cfg.TTL, "ttl", 0, "Token lifetime (0 never expires)")

	if err := fs.Parse(args); err != nil {
		return TokenConfig{}, err
	}

	cfg.SyncSecret = orEnv(cfg.SyncSecret, "SYNC_TOKEN_SECRET")
	if cfg.SyncSecret == "" {
		return TokenConfig{}, errors.New("SYNC_TOKEN_SECRET required")
	}
	if cfg.TTL < 0 {
		return TokenConfig{}, fmt.Errorf("invalid token ttl %s", cfg.TTL)
	}

	return cfg, nil
}

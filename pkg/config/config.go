package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Settings backends.
const (
	SettingsBackendRedis  = "redis"
	SettingsBackendMemory = "memory"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	CORS     CORSConfig
	Log      LogConfig
	Holidays HolidayConfig
	Events   EventStoreConfig
	Settings SettingsConfig
	Receipts ReceiptsConfig
	Venues   VenuesConfig

	Maintenance MaintenanceConfig
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig holds the single operator account guarding cache maintenance endpoints.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// HolidayConfig tunes the public holiday API client and the year cache.
type HolidayConfig struct {
	BaseURL         string
	APIKey          string
	Operation       string
	RequestTimeout  time.Duration
	MaxAttempts     int
	RetryDelay      time.Duration
	BatchSize       int
	PrefetchEnabled bool
	PrefetchCron    string
}

// EventStoreConfig points at the realtime database holding event records.
type EventStoreConfig struct {
	DatabaseURL    string
	AuthToken      string
	Path           string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// SettingsConfig selects where per-client view preferences live.
type SettingsConfig struct {
	Backend string
	TTL     time.Duration
}

// ReceiptsConfig configures year-end receipt rendering and delivery.
type ReceiptsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	FontPath        string
}

// MaintenanceConfig drives the background job queue and its cron triggers.
type MaintenanceConfig struct {
	Workers           int
	CleanupCron       string
	SnapshotRetention int
}

// VenuesConfig optionally overrides the built-in venue link table.
type VenuesConfig struct {
	File string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("ENABLE_SNAPSHOTS"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username:     v.GetString("ADMIN_USERNAME"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Holidays = HolidayConfig{
		BaseURL:         v.GetString("HOLIDAY_API_URL"),
		APIKey:          v.GetString("HOLIDAY_API_KEY"),
		Operation:       v.GetString("HOLIDAY_API_OPERATION"),
		RequestTimeout:  parseDuration(v.GetString("HOLIDAY_REQUEST_TIMEOUT"), 3*time.Second),
		MaxAttempts:     positiveInt(v.GetInt("HOLIDAY_MAX_ATTEMPTS"), 2),
		RetryDelay:      parseDuration(v.GetString("HOLIDAY_RETRY_DELAY"), 5*time.Second),
		BatchSize:       positiveInt(v.GetInt("HOLIDAY_BATCH_SIZE"), 3),
		PrefetchEnabled: v.GetBool("HOLIDAY_PREFETCH_ENABLED"),
		PrefetchCron:    v.GetString("HOLIDAY_PREFETCH_CRON"),
	}

	cfg.Events = EventStoreConfig{
		DatabaseURL:    strings.TrimRight(v.GetString("FIREBASE_DATABASE_URL"), "/"),
		AuthToken:      v.GetString("FIREBASE_AUTH_TOKEN"),
		Path:           strings.Trim(v.GetString("FIREBASE_EVENTS_PATH"), "/"),
		PollInterval:   parseDuration(v.GetString("EVENT_POLL_INTERVAL"), 30*time.Second),
		RequestTimeout: parseDuration(v.GetString("EVENT_REQUEST_TIMEOUT"), 10*time.Second),
	}

	cfg.Settings = SettingsConfig{
		Backend: strings.ToLower(v.GetString("SETTINGS_BACKEND")),
		TTL:     parseDuration(v.GetString("SETTINGS_TTL"), 0),
	}

	cfg.Receipts = ReceiptsConfig{
		StorageDir:      v.GetString("RECEIPTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("RECEIPTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("RECEIPTS_SIGNED_URL_TTL"), 24*time.Hour),
		FontPath:        v.GetString("RECEIPTS_FONT_PATH"),
	}

	cfg.Maintenance = MaintenanceConfig{
		Workers:           positiveInt(v.GetInt("MAINTENANCE_WORKERS"), 1),
		CleanupCron:       v.GetString("MAINTENANCE_CLEANUP_CRON"),
		SnapshotRetention: positiveInt(v.GetInt("SNAPSHOT_RETENTION"), 50),
	}

	cfg.Venues = VenuesConfig{File: v.GetString("VENUES_FILE")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Asia/Seoul")

	v.SetDefault("ENABLE_SNAPSHOTS", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ankr")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("HOLIDAY_API_URL", "http://apis.data.go.kr/B090041/openapi/service/SpcdeInfoService")
	v.SetDefault("HOLIDAY_API_KEY", "")
	v.SetDefault("HOLIDAY_API_OPERATION", "getHoliDeInfo")
	v.SetDefault("HOLIDAY_REQUEST_TIMEOUT", "3s")
	v.SetDefault("HOLIDAY_MAX_ATTEMPTS", 2)
	v.SetDefault("HOLIDAY_RETRY_DELAY", "5s")
	v.SetDefault("HOLIDAY_BATCH_SIZE", 3)
	v.SetDefault("HOLIDAY_PREFETCH_ENABLED", true)
	v.SetDefault("HOLIDAY_PREFETCH_CRON", "0 3 * * *")

	v.SetDefault("FIREBASE_DATABASE_URL", "")
	v.SetDefault("FIREBASE_AUTH_TOKEN", "")
	v.SetDefault("FIREBASE_EVENTS_PATH", "data")
	v.SetDefault("EVENT_POLL_INTERVAL", "30s")
	v.SetDefault("EVENT_REQUEST_TIMEOUT", "10s")

	v.SetDefault("SETTINGS_BACKEND", SettingsBackendMemory)
	v.SetDefault("SETTINGS_TTL", "")

	v.SetDefault("RECEIPTS_STORAGE_DIR", "./receipts")
	v.SetDefault("RECEIPTS_SIGNED_URL_SECRET", "dev_receipts_secret")
	v.SetDefault("RECEIPTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("RECEIPTS_FONT_PATH", "")

	v.SetDefault("MAINTENANCE_WORKERS", 1)
	v.SetDefault("MAINTENANCE_CLEANUP_CRON", "30 4 * * *")
	v.SetDefault("SNAPSHOT_RETENTION", 50)

	v.SetDefault("VENUES_FILE", "")
}

// Location resolves the configured timezone, falling back to UTC+9 when the
// zone database is unavailable.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone(c.Timezone, 9*60*60)
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

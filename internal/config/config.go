package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Redis     RedisConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Dedup     DedupConfig
	Geo       GeoConfig
	Click     ClickConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	Addr         string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

type ServerConfig struct {
	Port            string
	BaseURL         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	MaxConnIdleTime time.Duration
	AutoMigrate     bool
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type DedupConfig struct {
	Window          time.Duration
	JanitorInterval time.Duration
	RetentionFactor int
	ShutdownGrace   time.Duration
}

// Retention is the age past which the janitor drops a dedup entry.
func (d DedupConfig) Retention() time.Duration {
	return d.Window * time.Duration(d.RetentionFactor)
}

type GeoConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	MaxRetryAfter time.Duration
	CacheTTL      time.Duration
	CacheMaxItems int64
}

type ClickConfig struct {
	Async          bool
	PersistTimeout time.Duration
}

type CacheConfig struct {
	LinkTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RateLimitConfig struct {
	RegisterPerHour int
	LoginPerMinute  int
	CreatePerMinute int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, using default values")
	}

	redisConfig := RedisConfig{
		Host:         viper.GetString("REDIS_HOST"),
		Port:         viper.GetString("REDIS_PORT"),
		Password:     viper.GetString("REDIS_PASSWORD"),
		DB:           viper.GetInt("REDIS_DB"),
		PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
		MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
	}

	redisConfig.Addr = fmt.Sprintf("%s:%s", redisConfig.Host, redisConfig.Port)

	dbConfig := DatabaseConfig{
		Host:            viper.GetString("DB_HOST"),
		Port:            viper.GetString("DB_PORT"),
		User:            viper.GetString("DB_USER"),
		Password:        viper.GetString("DB_PASSWORD"),
		Name:            viper.GetString("DB_NAME"),
		MaxConns:        viper.GetInt("DB_MAX_CONNS"),
		MinConns:        viper.GetInt("DB_MIN_CONNS"),
		ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
		MaxConnIdleTime: viper.GetDuration("DB_MAX_CONN_IDLE_TIME"),
		AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
	}

	dbConfig.URL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.Name,
	)

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			BaseURL:         viper.GetString("SERVER_BASE_URL"),
			ReadTimeout:     viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    viper.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: viper.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Redis:    redisConfig,
		Database: dbConfig,
		Log: LogConfig{
			Level:      viper.GetString("LOG_LEVEL"),
			Format:     viper.GetString("LOG_FORMAT"),
			OutputPath: viper.GetString("LOG_OUTPUT_PATH"),
			MaxSize:    viper.GetInt("LOG_MAX_SIZE"),
			MaxBackups: viper.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     viper.GetInt("LOG_MAX_AGE"),
			Compress:   viper.GetBool("LOG_COMPRESS"),
		},
		Dedup: DedupConfig{
			Window:          viper.GetDuration("DEDUP_WINDOW"),
			JanitorInterval: viper.GetDuration("DEDUP_JANITOR_INTERVAL"),
			RetentionFactor: viper.GetInt("DEDUP_RETENTION_FACTOR"),
			ShutdownGrace:   viper.GetDuration("DEDUP_SHUTDOWN_GRACE"),
		},
		Geo: GeoConfig{
			BaseURL:       viper.GetString("GEO_BASE_URL"),
			Timeout:       viper.GetDuration("GEO_TIMEOUT"),
			MaxRetries:    viper.GetInt("GEO_MAX_RETRIES"),
			MaxRetryAfter: viper.GetDuration("GEO_MAX_RETRY_AFTER"),
			CacheTTL:      viper.GetDuration("GEO_CACHE_TTL"),
			CacheMaxItems: viper.GetInt64("GEO_CACHE_MAX_ITEMS"),
		},
		Click: ClickConfig{
			Async:          viper.GetBool("CLICK_ASYNC"),
			PersistTimeout: viper.GetDuration("CLICK_PERSIST_TIMEOUT"),
		},
		Cache: CacheConfig{
			LinkTTL: viper.GetDuration("CACHE_LINK_TTL"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("AUTH_JWT_SECRET"),
			TokenTTL:  viper.GetDuration("AUTH_TOKEN_TTL"),
		},
		RateLimit: RateLimitConfig{
			RegisterPerHour: viper.GetInt("RATE_LIMIT_REGISTER_PER_HOUR"),
			LoginPerMinute:  viper.GetInt("RATE_LIMIT_LOGIN_PER_MINUTE"),
			CreatePerMinute: viper.GetInt("RATE_LIMIT_CREATE_PER_MINUTE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_BASE_URL", "http://localhost:8080")
	viper.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 20)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "root")
	viper.SetDefault("DB_PASSWORD", "root")
	viper.SetDefault("DB_NAME", "urlshortener")
	viper.SetDefault("DB_MAX_CONNS", 20)
	viper.SetDefault("DB_MIN_CONNS", 2)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", time.Hour)
	viper.SetDefault("DB_MAX_CONN_IDLE_TIME", 30*time.Minute)
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LOG_OUTPUT_PATH", "logs/app.log")
	viper.SetDefault("LOG_MAX_SIZE", 1)
	viper.SetDefault("LOG_MAX_BACKUPS", 5)
	viper.SetDefault("LOG_MAX_AGE", 28)
	viper.SetDefault("LOG_COMPRESS", false)

	viper.SetDefault("DEDUP_WINDOW", 5*time.Second)
	viper.SetDefault("DEDUP_JANITOR_INTERVAL", time.Hour)
	viper.SetDefault("DEDUP_RETENTION_FACTOR", 10)
	viper.SetDefault("DEDUP_SHUTDOWN_GRACE", 5*time.Second)

	viper.SetDefault("GEO_BASE_URL", "http://ip-api.com")
	viper.SetDefault("GEO_TIMEOUT", 2*time.Second)
	viper.SetDefault("GEO_MAX_RETRIES", 2)
	viper.SetDefault("GEO_MAX_RETRY_AFTER", 5*time.Second)
	viper.SetDefault("GEO_CACHE_TTL", time.Hour)
	viper.SetDefault("GEO_CACHE_MAX_ITEMS", 10000)

	viper.SetDefault("CLICK_ASYNC", true)
	viper.SetDefault("CLICK_PERSIST_TIMEOUT", 5*time.Second)

	viper.SetDefault("CACHE_LINK_TTL", 24*time.Hour)

	viper.SetDefault("AUTH_JWT_SECRET", "change-me")
	viper.SetDefault("AUTH_TOKEN_TTL", 30*time.Minute)

	viper.SetDefault("RATE_LIMIT_REGISTER_PER_HOUR", 5)
	viper.SetDefault("RATE_LIMIT_LOGIN_PER_MINUTE", 10)
	viper.SetDefault("RATE_LIMIT_CREATE_PER_MINUTE", 30)
}

func (c *Config) Validate() error {
	var errs []error

	if c.Dedup.Window <= 0 {
		errs = append(errs, errors.New("DEDUP_WINDOW must be positive"))
	}
	if c.Dedup.JanitorInterval <= 0 {
		errs = append(errs, errors.New("DEDUP_JANITOR_INTERVAL must be positive"))
	}
	if c.Dedup.RetentionFactor < 1 {
		errs = append(errs, errors.New("DEDUP_RETENTION_FACTOR must be at least 1"))
	}
	if c.Geo.Timeout <= 0 {
		errs = append(errs, errors.New("GEO_TIMEOUT must be positive"))
	}
	if c.Geo.MaxRetries < 0 {
		errs = append(errs, errors.New("GEO_MAX_RETRIES must not be negative"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}

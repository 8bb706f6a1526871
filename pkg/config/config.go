package config

import (
	"errors"
	"fmt"
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

// Significance test names accepted by ANALYTICS_SIGNIFICANCE_TEST.
const (
	SignificanceProportionZ = "proportion_z"
	SignificanceGrowthWelch = "growth_welch"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Analytics AnalyticsConfig
	Reports   ReportsConfig
}

type DatabaseConfig struct {
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	Audience   []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyticsConfig governs the analytics endpoints, their cache and the pipeline.
type AnalyticsConfig struct {
	Enabled     bool
	CacheTTL    time.Duration
	Concurrency int
	// SignificanceTest is proportion_z or growth_welch.
	SignificanceTest string
	// ControlRate and ControlSize describe a fixed control group for proportion_z;
	// a zero size compares against the pooled rest of the cohort.
	ControlRate float64
	ControlSize int
	// ControlInterventions form the baseline for growth_welch.
	ControlInterventions []string
	// LearningProfiles always appear as matrix columns.
	LearningProfiles []string
}

// ReportsConfig configures asynchronous report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	AutoInterval      time.Duration
	AutoFormat        string
	WorkerConcurrency int
	WorkerRetries     int
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 15*time.Minute),
		Issuer:     v.GetString("JWT_ISSUER"),
		Audience:   splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:              v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL:             parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		Concurrency:          v.GetInt("ANALYTICS_CONCURRENCY"),
		SignificanceTest:     strings.ToLower(strings.TrimSpace(v.GetString("ANALYTICS_SIGNIFICANCE_TEST"))),
		ControlRate:          v.GetFloat64("ANALYTICS_CONTROL_RATE"),
		ControlSize:          v.GetInt("ANALYTICS_CONTROL_SIZE"),
		ControlInterventions: splitAndTrim(v.GetString("ANALYTICS_CONTROL_INTERVENTIONS")),
		LearningProfiles:     splitAndTrim(v.GetString("ANALYTICS_LEARNING_PROFILES")),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		AutoInterval:      parseDuration(v.GetString("REPORTS_AUTO_INTERVAL"), 7*24*time.Hour),
		AutoFormat:        strings.ToLower(v.GetString("REPORTS_AUTO_FORMAT")),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Analytics.SignificanceTest {
	case SignificanceProportionZ, SignificanceGrowthWelch:
	default:
		return fmt.Errorf("unknown ANALYTICS_SIGNIFICANCE_TEST %q", c.Analytics.SignificanceTest)
	}
	if c.Analytics.ControlRate < 0 || c.Analytics.ControlRate > 1 {
		return fmt.Errorf("ANALYTICS_CONTROL_RATE must be within [0,1], got %v", c.Analytics.ControlRate)
	}
	if c.Analytics.ControlSize < 0 {
		return fmt.Errorf("ANALYTICS_CONTROL_SIZE must not be negative")
	}
	if c.Reports.AutoFormat != "csv" && c.Reports.AutoFormat != "pdf" {
		return fmt.Errorf("unknown REPORTS_AUTO_FORMAT %q", c.Reports.AutoFormat)
	}
	if c.Env == EnvProduction && c.JWT.Secret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

const devJWTSecret = "dev_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "intervention_insights")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "15m")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("ANALYTICS_CONCURRENCY", 4)
	v.SetDefault("ANALYTICS_SIGNIFICANCE_TEST", SignificanceProportionZ)
	v.SetDefault("ANALYTICS_CONTROL_RATE", 0)
	v.SetDefault("ANALYTICS_CONTROL_SIZE", 0)
	v.SetDefault("ANALYTICS_CONTROL_INTERVENTIONS", "")
	v.SetDefault("ANALYTICS_LEARNING_PROFILES", "ADHD,Autism,Dyslexia,Language Disorder,Processing Disorder")

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_AUTO_INTERVAL", "168h")
	v.SetDefault("REPORTS_AUTO_FORMAT", "pdf")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
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

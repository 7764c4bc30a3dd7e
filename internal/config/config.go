package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// PlanConfig describes one sellable plan exposed by checkout. The catalog is
// loaded once at startup and handed to the checkout service as a read-only
// lookup; nothing mutates it afterwards.
type PlanConfig struct {
	Code      string
	PriceID   string
	ProductID string
	TrialDays int
}

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	ProcessorAPIKey        string
	ProcessorBaseURL       string
	ProcessorWebhookSecret string

	RedisAddr     string
	RedisPassword string

	RefreshInterval time.Duration

	// Plans is the startup-built plan catalog. TRIAL_PLAN_CODE marks the one
	// plan that may carry a trial period.
	Plans         []PlanConfig
	TrialPlanCode string
	PromoCodes    map[string]string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "trueup"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DB_TYPE", "sqlite"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_NAME", "trueup"),
		DBUser:            getenv("DB_USER", "trueup"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DB_CONN_MAX_IDLE_TIME", 600),

		ProcessorAPIKey:        strings.TrimSpace(getenv("PROCESSOR_API_KEY", "")),
		ProcessorBaseURL:       getenv("PROCESSOR_BASE_URL", "https://api.stripe.com"),
		ProcessorWebhookSecret: strings.TrimSpace(getenv("PROCESSOR_WEBHOOK_SECRET", "")),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		RefreshInterval: getenvDuration("REFRESH_INTERVAL", 15*time.Minute),

		Plans:         loadPlans(),
		TrialPlanCode: getenv("TRIAL_PLAN_CODE", ""),
		PromoCodes:    loadPromoCodes(),
	}
}

// loadPlans parses PLANS, a comma-separated list of
// code:price_id:product_id:trial_days entries.
func loadPlans() []PlanConfig {
	raw := strings.TrimSpace(getenv("PLANS", ""))
	if raw == "" {
		return nil
	}

	var plans []PlanConfig
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 3 {
			continue
		}
		plan := PlanConfig{
			Code:      parts[0],
			PriceID:   parts[1],
			ProductID: parts[2],
		}
		if len(parts) > 3 {
			plan.TrialDays, _ = strconv.Atoi(parts[3])
		}
		plans = append(plans, plan)
	}
	return plans
}

// loadPromoCodes parses PROMO_CODES, a comma-separated list of
// code=processor_promotion_id entries.
func loadPromoCodes() map[string]string {
	raw := strings.TrimSpace(getenv("PROMO_CODES", ""))
	if raw == "" {
		return nil
	}

	codes := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			continue
		}
		codes[strings.ToLower(k)] = v
	}
	return codes
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// Module provides application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)

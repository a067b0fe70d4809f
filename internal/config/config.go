package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Rollout   RolloutConfig
	LiveFacts LiveFactsConfig
	Legacy    LegacyConfig
	Routing   RoutingConfig
	Intent    IntentConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	SampleTopic        string
}

type DatabaseConfig struct {
	Connection string
	Debug      bool // log every SQL statement
}

type RolloutConfig struct {
	Schedule           string // cron spec for the auto-advance check
	AutoAdvance        bool
	BootstrapInitial   bool // open "initial" at start-up when no phase is open
	MinSuccessRate     float64
	MaxErrorRate       float64
	MinConfidenceGain  float64
	MinSamples         int
	SuccessPolicy      string // "new" or "max"
	PercentageCacheTTL time.Duration
	LeaseTTL           time.Duration
	LeaseKey           string
}

type LiveFactsConfig struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

type LegacyConfig struct {
	URL     string
	Timeout time.Duration
}

type RoutingConfig struct {
	ShadowCompare bool
}

type IntentConfig struct {
	PatternsPath string // empty means the embedded default table
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("ROLLOUT_AUDIT_LOG_PATH", "logs/rollout_audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			SampleTopic:        getEnv("SAMPLE_TOPIC_NAME", "ROUTER_SAMPLES"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			Debug:      getEnvAsBool("DB_DEBUG", false),
		},
		Rollout: RolloutConfig{
			Schedule:           getEnv("ROLLOUT_CHECK_SCHEDULE", "@hourly"),
			AutoAdvance:        getEnvAsBool("ROLLOUT_AUTO_ADVANCE", true),
			BootstrapInitial:   getEnvAsBool("ROLLOUT_BOOTSTRAP_INITIAL", true),
			MinSuccessRate:     getEnvAsFloat("ROLLOUT_MIN_SUCCESS_RATE", 0.95),
			MaxErrorRate:       getEnvAsFloat("ROLLOUT_MAX_ERROR_RATE", 0.02),
			MinConfidenceGain:  getEnvAsFloat("ROLLOUT_MIN_CONFIDENCE_GAIN", 0.05),
			MinSamples:         getEnvAsInt("ROLLOUT_MIN_SAMPLES", 100),
			SuccessPolicy:      getEnv("ROLLOUT_SUCCESS_POLICY", "new"),
			PercentageCacheTTL: getEnvAsDuration("ROLLOUT_PERCENTAGE_CACHE_TTL", 30*time.Second),
			LeaseTTL:           getEnvAsDuration("ROLLOUT_LEASE_TTL", 5*time.Minute),
			LeaseKey:           getEnv("ROLLOUT_LEASE_KEY", "candidate-router:rollout:tick"),
		},
		LiveFacts: LiveFactsConfig{
			BaseURL: getEnv("LIVE_FACTS_BASE_URL", ""),
			Timeout: getEnvAsDuration("LIVE_FACTS_TIMEOUT", 2*time.Second),
			RPS:     getEnvAsFloat("LIVE_FACTS_RPS", 20),
			Burst:   getEnvAsInt("LIVE_FACTS_BURST", 40),
		},
		Legacy: LegacyConfig{
			URL:     getEnv("LEGACY_RESPONDER_URL", ""),
			Timeout: getEnvAsDuration("LEGACY_RESPONDER_TIMEOUT", 3*time.Second),
		},
		Routing: RoutingConfig{
			ShadowCompare: getEnvAsBool("ROUTING_SHADOW_COMPARE", false),
		},
		Intent: IntentConfig{
			PatternsPath: getEnv("INTENT_PATTERNS_PATH", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "candidate-router"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

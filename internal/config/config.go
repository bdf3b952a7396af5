package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/medicare/storefront/internal/money"
	"github.com/medicare/storefront/internal/pricing"
)

// Config captures runtime configuration for the storefront service.
type Config struct {
	HTTP        HTTPConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	OrderAPI    OrderAPIConfig
	Pricing     pricing.Policy
	Idempotency IdempotencyConfig
	Telemetry   TelemetryConfig
	Service     ServiceConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

// StorageBackend selects where carts are persisted.
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StoragePostgres StorageBackend = "postgres"
)

type StorageConfig struct {
	Backend StorageBackend
	// IdleTTL is how long an untouched cart session stays in memory.
	IdleTTL time.Duration
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type OrderAPIConfig struct {
	URL     string
	Timeout time.Duration
}

type IdempotencyConfig struct {
	TTL time.Duration
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	defaultHTTPPort        = 8080
	defaultShutdownGrace   = 15
	defaultStorageBackend  = StorageMemory
	defaultMigrationsPath  = "migrations"
	defaultAutoMigrate     = true
	defaultOrderAPIURL     = "http://localhost:5000"
	defaultOrderAPITimeout = 10
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultCartIdleTTL     = 30 * time.Minute
	defaultServiceName     = "medicare-storefront"
	defaultServiceVersion  = "0.1.0"
	defaultEnvironment     = "development"
	defaultLogLevel        = "info"
	defaultOTelSampleRate  = 1.0
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	storageCfg, err := loadStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	dbCfg := loadDatabaseConfig()

	orderAPICfg, err := loadOrderAPIConfig()
	if err != nil {
		return nil, fmt.Errorf("loading order API config: %w", err)
	}

	policy, err := loadPricingPolicy()
	if err != nil {
		return nil, fmt.Errorf("loading pricing config: %w", err)
	}

	idemCfg, err := loadIdempotencyConfig()
	if err != nil {
		return nil, fmt.Errorf("loading idempotency config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	return &Config{
		HTTP:        httpCfg,
		Storage:     storageCfg,
		Database:    dbCfg,
		OrderAPI:    orderAPICfg,
		Pricing:     policy,
		Idempotency: idemCfg,
		Telemetry:   telCfg,
		Service:     loadServiceConfig(),
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port, err := getIntEnv("API_HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return HTTPConfig{}, err
	}

	shutdownGrace, err := getIntEnv("API_SHUTDOWN_GRACE_SECONDS", defaultShutdownGrace)
	if err != nil {
		return HTTPConfig{}, err
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadStorageConfig() (StorageConfig, error) {
	backend := StorageBackend(strings.ToLower(getEnvOrDefault("CART_STORAGE", string(defaultStorageBackend))))
	switch backend {
	case StorageMemory, StoragePostgres:
	default:
		return StorageConfig{}, fmt.Errorf("invalid CART_STORAGE %q: want memory or postgres", backend)
	}

	idle := defaultCartIdleTTL
	if value, ok := os.LookupEnv("CART_IDLE_TTL"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return StorageConfig{}, fmt.Errorf("invalid CART_IDLE_TTL: %w", err)
		}
		if parsed <= 0 {
			return StorageConfig{}, fmt.Errorf("invalid CART_IDLE_TTL %q: must be positive", value)
		}
		idle = parsed
	}
	return StorageConfig{Backend: backend, IdleTTL: idle}, nil
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    getBoolEnv("AUTO_MIGRATE", defaultAutoMigrate),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}
}

func loadOrderAPIConfig() (OrderAPIConfig, error) {
	timeout, err := getIntEnv("ORDER_API_TIMEOUT_SECONDS", defaultOrderAPITimeout)
	if err != nil {
		return OrderAPIConfig{}, err
	}
	if timeout <= 0 {
		return OrderAPIConfig{}, fmt.Errorf("invalid ORDER_API_TIMEOUT_SECONDS: must be positive")
	}

	return OrderAPIConfig{
		URL:     getEnvOrDefault("ORDER_API_URL", defaultOrderAPIURL),
		Timeout: time.Duration(timeout) * time.Second,
	}, nil
}

func loadPricingPolicy() (pricing.Policy, error) {
	policy := pricing.DefaultPolicy()

	if value, ok := os.LookupEnv("PRICING_TAX_RATE"); ok {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return pricing.Policy{}, fmt.Errorf("invalid PRICING_TAX_RATE: %w", err)
		}
		policy.TaxRate = rate
	}

	if value, ok := os.LookupEnv("PRICING_SHIPPING_FEE"); ok {
		fee, err := money.Parse(value)
		if err != nil {
			return pricing.Policy{}, fmt.Errorf("invalid PRICING_SHIPPING_FEE: %w", err)
		}
		policy.FlatShippingFee = fee
	}

	if value, ok := os.LookupEnv("PRICING_FREE_SHIPPING_THRESHOLD"); ok {
		threshold, err := money.Parse(value)
		if err != nil {
			return pricing.Policy{}, fmt.Errorf("invalid PRICING_FREE_SHIPPING_THRESHOLD: %w", err)
		}
		policy.FreeShippingThreshold = threshold
	}

	if err := policy.Validate(); err != nil {
		return pricing.Policy{}, err
	}
	return policy, nil
}

func loadIdempotencyConfig() (IdempotencyConfig, error) {
	ttl := defaultIdempotencyTTL
	if value, ok := os.LookupEnv("IDEMPOTENCY_TTL"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return IdempotencyConfig{}, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
		}
		ttl = parsed
	}
	return IdempotencyConfig{TTL: ttl}, nil
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", defaultLogLevel)
	otelEndpoint := getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	enableTracing := getBoolEnv("OTEL_ENABLE_TRACING", true)
	enableMetrics := getBoolEnv("OTEL_ENABLE_METRICS", true)

	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      logLevel,
		OTelEndpoint:  otelEndpoint,
		EnableTracing: enableTracing,
		EnableMetrics: enableMetrics,
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "storefront")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	maxConns := getEnvOrDefault("DB_MAX_CONNS", "10")
	minConns := getEnvOrDefault("DB_MIN_CONNS", "2")
	maxLifetime := getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s&pool_max_conn_lifetime=%s",
		user, password, host, port, dbName, sslMode, maxConns, minConns, maxLifetime,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}

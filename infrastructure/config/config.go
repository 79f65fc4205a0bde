package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Site configuration
	Domain      string
	StaticPages []string

	// AWS configuration
	AWSRegion    string
	ContentTable string
	EventBusName string

	// Supabase storage configuration (artifact store)
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Cache and resolver tuning
	CacheTTL          time.Duration
	ResolverBatchSize int
	ArtifactMaxAge    time.Duration

	// Sync tuning
	SitemapLimit int

	// Logging
	LogLevel string

	// CORS
	AllowedOrigins []string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool

	// TunablesPath points at the optional hot-reloaded tunables file
	TunablesPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		Domain:      strings.TrimRight(getEnv("SITE_DOMAIN", "https://blog.gangagames.com"), "/"),
		StaticPages: getEnvList("STATIC_PAGES", []string{"about", "contact"}),

		AWSRegion:    getEnv("AWS_REGION", "eu-central-1"),
		ContentTable: getEnv("CONTENT_TABLE", "gangablog-content"),
		EventBusName: getEnv("EVENT_BUS_NAME", "gangablog-events"),

		SupabaseURL:    getEnv("SUPABASE_URL", ""),
		SupabaseKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseBucket: getEnv("SUPABASE_BUCKET", "artifacts"),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		CacheTTL:          getEnvDuration("CACHE_TTL", 30*time.Minute),
		ResolverBatchSize: getEnvInt("RESOLVER_BATCH_SIZE", 50),
		ArtifactMaxAge:    getEnvDuration("ARTIFACT_MAX_AGE", 4*time.Hour),

		SitemapLimit: getEnvInt("SITEMAP_LIMIT", 500),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		TunablesPath: getEnv("TUNABLES_PATH", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Domain == "" {
		return fmt.Errorf("SITE_DOMAIN is required")
	}
	if !strings.HasPrefix(c.Domain, "http://") && !strings.HasPrefix(c.Domain, "https://") {
		return fmt.Errorf("SITE_DOMAIN must include a scheme, got %q", c.Domain)
	}

	if c.Environment == "production" {
		if c.ContentTable == "" {
			return fmt.Errorf("CONTENT_TABLE is required")
		}
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Engine   EngineConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	EnableMetrics   bool
	MetricsPath     string
	// Origins allowed to open the revalidation websocket. Empty allows any.
	AllowedOrigins []string
}

// DatabaseConfig holds Content Store configuration
type DatabaseConfig struct {
	Provider           string // "mongo" or "memory"
	URL                string
	Name               string
	ConnectTimeout     time.Duration
	OperationTimeout   time.Duration
	MaxPoolSize        int
	MinPoolSize        int
	SlowQueryThreshold time.Duration
	RunMigrations      bool
	MaxRetryAttempts   int
	RetryBackoff       time.Duration
}

// CacheConfig holds cache configuration for derived rankings
type CacheConfig struct {
	Provider        string // "memory" or "redis"
	RedisURL        string
	PoolSize        int
	MaxKeys         int
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	HotQuestionsTTL time.Duration
	PopularTagsTTL  time.Duration
	// ViewTTL bounds how long anonymous API reads are served from cache.
	// Zero disables the view cache.
	ViewTTL time.Duration
}

// AuthConfig describes how the caller's identity-provider subject is resolved.
// Credentials are verified by the identity provider, not here.
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	TrustHeader    bool
	IdentityHeader string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// EngineConfig tunes the ranking and pagination engines
type EngineConfig struct {
	DefaultPageSize     int
	MaxPageSize         int
	HotQuestionsLimit   int
	PopularTagsLimit    int
	RecommendedPageSize int
	UsersPageSize       int
	GlobalSearchLimit   int
	TypedSearchLimit    int
}

// Load reads configuration from the environment, loading .env.<GO_ENV>
// (or .env) first outside production.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	cfg := &Config{
		Server:   loadServerConfig(env),
		Database: loadDatabaseConfig(env),
		Cache:    loadCacheConfig(),
		Auth:     loadAuthConfig(env),
		Logging:  loadLoggingConfig(env),
		Engine:   loadEngineConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig(env string) ServerConfig {
	cfg := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		EnableMetrics:   getBoolEnv("ENABLE_METRICS", true),
		MetricsPath:     getEnv("METRICS_PATH", "/metrics"),
		AllowedOrigins:  getListEnv("ALLOWED_ORIGINS", nil),
	}

	if env == "development" {
		cfg.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return cfg
}

func loadDatabaseConfig(env string) DatabaseConfig {
	return DatabaseConfig{
		Provider:           strings.ToLower(getEnv("DB_PROVIDER", "mongo")),
		URL:                getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		Name:               getEnv("DB_NAME", "devflow"),
		ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		OperationTimeout:   getDurationEnv("DB_OPERATION_TIMEOUT", 15*time.Second),
		MaxPoolSize:        getIntEnv("DB_MAX_POOL_SIZE", 50),
		MinPoolSize:        getIntEnv("DB_MIN_POOL_SIZE", 0),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		RunMigrations:      getBoolEnv("DB_RUN_MIGRATIONS", true),
		MaxRetryAttempts:   getIntEnv("DB_MAX_RETRY_ATTEMPTS", retryAttemptsForEnv(env)),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", time.Second),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:        strings.ToLower(getEnv("CACHE_PROVIDER", "memory")),
		RedisURL:        getEnv("REDIS_URL", ""),
		PoolSize:        getIntEnv("REDIS_POOL_SIZE", 10),
		MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
		DefaultTTL:      getDurationEnv("CACHE_TTL", 5*time.Minute),
		CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", time.Minute),
		HotQuestionsTTL: getDurationEnv("CACHE_HOT_QUESTIONS_TTL", time.Minute),
		PopularTagsTTL:  getDurationEnv("CACHE_POPULAR_TAGS_TTL", 5*time.Minute),
		ViewTTL:         getDurationEnv("CACHE_VIEW_TTL", 15*time.Second),
	}
}

func loadAuthConfig(env string) AuthConfig {
	return AuthConfig{
		JWTSecret:      getEnv("IDENTITY_JWT_SECRET", ""),
		JWTIssuer:      getEnv("IDENTITY_JWT_ISSUER", ""),
		TrustHeader:    getBoolEnv("IDENTITY_TRUST_HEADER", env == "development"),
		IdentityHeader: getEnv("IDENTITY_HEADER", "X-User-ID"),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

func loadEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultPageSize:     getIntEnv("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:         getIntEnv("MAX_PAGE_SIZE", 100),
		HotQuestionsLimit:   getIntEnv("HOT_QUESTIONS_LIMIT", 5),
		PopularTagsLimit:    getIntEnv("POPULAR_TAGS_LIMIT", 5),
		RecommendedPageSize: getIntEnv("RECOMMENDED_PAGE_SIZE", 20),
		UsersPageSize:       getIntEnv("USERS_PAGE_SIZE", 10),
		GlobalSearchLimit:   getIntEnv("GLOBAL_SEARCH_LIMIT", 2),
		TypedSearchLimit:    getIntEnv("TYPED_SEARCH_LIMIT", 8),
	}
}

// Validate checks every section of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}
	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Provider {
	case "memory":
		return nil
	case "mongo":
	default:
		return fmt.Errorf("unsupported DB_PROVIDER %q", d.Provider)
	}

	if d.URL == "" {
		return fmt.Errorf("MONGODB_URL is required")
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return fmt.Errorf("invalid MONGODB_URL: %w", err)
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return fmt.Errorf("MONGODB_URL must use the mongodb or mongodb+srv scheme")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.MaxPoolSize <= 0 {
		return fmt.Errorf("MaxPoolSize must be positive")
	}
	if d.MinPoolSize < 0 || d.MinPoolSize > d.MaxPoolSize {
		return fmt.Errorf("MinPoolSize must be between 0 and MaxPoolSize")
	}
	if d.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be positive")
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "memory", "":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis cache provider")
		}
	default:
		return fmt.Errorf("unsupported CACHE_PROVIDER %q", c.Provider)
	}
	if c.MaxKeys <= 0 {
		return fmt.Errorf("CACHE_MAX_KEYS must be positive")
	}
	return nil
}

func (a *AuthConfig) Validate(env string) error {
	if env == "production" {
		if a.JWTSecret == "" {
			return fmt.Errorf("IDENTITY_JWT_SECRET must be set for production")
		}
		if a.TrustHeader {
			return fmt.Errorf("IDENTITY_TRUST_HEADER cannot be enabled in production")
		}
	}
	if a.TrustHeader && a.IdentityHeader == "" {
		return fmt.Errorf("IDENTITY_HEADER is required when trusting the identity header")
	}
	return nil
}

func (e *EngineConfig) Validate() error {
	if e.DefaultPageSize <= 0 || e.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if e.DefaultPageSize > e.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE cannot exceed MAX_PAGE_SIZE")
	}
	if e.GlobalSearchLimit <= 0 || e.TypedSearchLimit <= 0 {
		return fmt.Errorf("search limits must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func retryAttemptsForEnv(env string) int {
	if env == "production" {
		return 5
	}
	return 3
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}

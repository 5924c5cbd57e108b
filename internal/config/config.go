package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Email     EmailConfig     `yaml:"email"`
	Push      PushConfig      `yaml:"push"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Plans     PlansConfig     `yaml:"plans"`
	KYC       KYCConfig       `yaml:"kyc"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	GRPCPort       int      `yaml:"grpc_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RunMigrations  bool     `yaml:"run_migrations"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains cache and pub/sub settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	ItemTTL  int    `yaml:"item_ttl_seconds"`
	Channel  string `yaml:"channel"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	Type         string   `yaml:"type"`       // "mock" or "s3"
	UploadDir    string   `yaml:"upload_dir"` // For mock storage
	BaseURL      string   `yaml:"base_url"`   // Server base URL for mock URLs
	Bucket       string   `yaml:"bucket"`
	Region       string   `yaml:"region"`
	Endpoint     string   `yaml:"endpoint"` // S3 compatible providers
	AccessKeyID  string   `yaml:"access_key_id"`
	SecretKey    string   `yaml:"secret_access_key"`
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
	URLExpiry    int      `yaml:"url_expiry_minutes"`
}

// EmailConfig contains SendGrid settings. An empty APIKey disables outgoing email.
type EmailConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
}

// PushConfig contains Firebase Cloud Messaging settings
type PushConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentials_file"`
	ProjectID       string `yaml:"project_id"`
}

// GeocodingConfig points at a Nominatim compatible reverse geocoding endpoint
type GeocodingConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// RateLimitConfig limits requests per user (or IP when anonymous).
// X-Forwarded-For is only honoured when the peer is one of TrustedProxies
// (IPs or CIDRs).
type RateLimitConfig struct {
	RequestsPerSecond int      `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	TrustedProxies    []string `yaml:"trusted_proxies"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// PlansConfig is the single table of listing caps per subscription plan.
// A negative limit means unlimited.
type PlansConfig struct {
	FreeListingLimit    int   `yaml:"free_listing_limit"`
	BasicListingLimit   int   `yaml:"basic_listing_limit"`
	PremiumListingLimit int   `yaml:"premium_listing_limit"`
	BasicPriceCents     int32 `yaml:"basic_price_cents"`
	PremiumPriceCents   int32 `yaml:"premium_price_cents"`
	PeriodDays          int   `yaml:"period_days"`
}

// KYCConfig holds the identity verification threshold for listings
type KYCConfig struct {
	PriceThresholdCents int32 `yaml:"price_threshold_cents"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RecomputeTrustScores      string `yaml:"recompute_trust_scores"`
	SendReviewReminders       string `yaml:"send_review_reminders"`
	SendPendingReminders      string `yaml:"send_pending_reminders"`
	LapseSubscriptions        string `yaml:"lapse_subscriptions"`
	CleanupPendingUploads     string `yaml:"cleanup_pending_uploads"`
	PendingReminderAfterHours int    `yaml:"pending_reminder_after_hours"`
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first so its values can override the YAML.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a validated Config from YAML bytes and the current environment
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.Server.AllowedOrigins = strings.Split(val, ",")
	}
	if val := os.Getenv("TRUSTED_PROXIES"); val != "" {
		c.RateLimit.TrustedProxies = strings.Split(val, ",")
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("S3_BUCKET"); val != "" {
		c.Storage.Bucket = val
	}
	if val := os.Getenv("S3_ENDPOINT"); val != "" {
		c.Storage.Endpoint = val
	}
	if val := os.Getenv("AWS_ACCESS_KEY_ID"); val != "" {
		c.Storage.AccessKeyID = val
	}
	if val := os.Getenv("AWS_SECRET_ACCESS_KEY"); val != "" {
		c.Storage.SecretKey = val
	}

	// Email and push
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		c.Push.CredentialsFile = val
		c.Push.Enabled = true
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// KYC
	if val := os.Getenv("KYC_PRICE_THRESHOLD_CENTS"); val != "" {
		fmt.Sscanf(val, "%d", &c.KYC.PriceThresholdCents)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = c.Server.Port + 1
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "mock"
	}
	switch c.Storage.Type {
	case "mock":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
		if c.Storage.Region == "" {
			c.Storage.Region = "us-east-1"
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.URLExpiry == 0 {
		c.Storage.URLExpiry = 15
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	}

	if c.Redis.ItemTTL == 0 {
		c.Redis.ItemTTL = 300
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "bora-alugar:changes"
	}

	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = "bora-alugar-backend"
	}
	if c.Geocoding.TimeoutMS == 0 {
		c.Geocoding.TimeoutMS = 3000
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
	for _, p := range c.RateLimit.TrustedProxies {
		if _, err := ParseProxy(p); err != nil {
			return fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
	}

	// Plan defaults. Zero for Free means "not configured", so it gets the default cap of 1.
	if c.Plans.FreeListingLimit == 0 {
		c.Plans.FreeListingLimit = 1
	}
	if c.Plans.BasicListingLimit == 0 {
		c.Plans.BasicListingLimit = 10
	}
	if c.Plans.PremiumListingLimit == 0 {
		c.Plans.PremiumListingLimit = -1
	}
	if c.Plans.FreeListingLimit > 0 && c.Plans.BasicListingLimit > 0 && c.Plans.BasicListingLimit < c.Plans.FreeListingLimit {
		return fmt.Errorf("basic listing limit (%d) below free limit (%d)", c.Plans.BasicListingLimit, c.Plans.FreeListingLimit)
	}
	if c.Plans.BasicPriceCents == 0 {
		c.Plans.BasicPriceCents = 2990
	}
	if c.Plans.PremiumPriceCents == 0 {
		c.Plans.PremiumPriceCents = 7990
	}
	if c.Plans.PeriodDays == 0 {
		c.Plans.PeriodDays = 30
	}

	if c.KYC.PriceThresholdCents == 0 {
		c.KYC.PriceThresholdCents = 50000 // R$500.00 per day
	}

	if c.Scheduler.RecomputeTrustScores == "" {
		c.Scheduler.RecomputeTrustScores = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.SendReviewReminders == "" {
		c.Scheduler.SendReviewReminders = "0 0 12 * * *" // Noon UTC
	}
	if c.Scheduler.SendPendingReminders == "" {
		c.Scheduler.SendPendingReminders = "0 0 * * * *" // Hourly
	}
	if c.Scheduler.LapseSubscriptions == "" {
		c.Scheduler.LapseSubscriptions = "0 30 0 * * *" // 12:30 AM UTC
	}
	if c.Scheduler.CleanupPendingUploads == "" {
		c.Scheduler.CleanupPendingUploads = "0 0 4 * * *" // 4 AM UTC
	}
	if c.Scheduler.PendingReminderAfterHours == 0 {
		c.Scheduler.PendingReminderAfterHours = 24
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// ParseProxy accepts a single IP or a CIDR range
func ParseProxy(s string) (netip.Prefix, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

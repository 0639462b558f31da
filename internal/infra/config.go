package infra

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Blob store providers accepted by BLOB_PROVIDER.
const (
	BlobProviderCloudinary = "cloudinary"
	BlobProviderS3         = "s3"
	BlobProviderFilesystem = "filesystem"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	RedisURL      string
	LogLevel      string
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	GeoIPDBPath   string
	DefaultLocale string

	BlobProvider           string
	StorageDir             string
	StorageBaseURL         string
	CloudinaryCloudName    string
	CloudinaryUploadPreset string
	CloudinaryBaseURL      string
	S3Bucket               string
	S3Region               string
	S3Endpoint             string
	S3PublicBaseURL        string
	MaxUploadBytes         int64

	DBMaxConns         int
	DBMinConns         int
	DBStatementTimeout time.Duration

	FontDir             string
	DefaultCredits      int
	AdminMaxCredits     int
	CreditResetInterval time.Duration
	AdminBootstrapEmail string

	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      strings.ToLower(os.Getenv("LOG_LEVEL")),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnv("JWT_ISSUER", "quotestudio"),
		TokenTTL:      time.Hour * time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24*7)),
		GeoIPDBPath:   os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),

		BlobProvider:           strings.ToLower(getEnv("BLOB_PROVIDER", BlobProviderFilesystem)),
		StorageDir:             getEnv("STORAGE_DIR", "./data/uploads"),
		StorageBaseURL:         getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "quote_designs"),
		CloudinaryBaseURL:      getEnv("CLOUDINARY_BASE_URL", "https://api.cloudinary.com/v1_1"),
		S3Bucket:               os.Getenv("S3_BUCKET"),
		S3Region:               getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:             os.Getenv("S3_ENDPOINT"),
		S3PublicBaseURL:        os.Getenv("S3_PUBLIC_BASE_URL"),
		MaxUploadBytes:         int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,

		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:         getEnvInt("DB_MIN_CONNS", 1),
		DBStatementTimeout: time.Millisecond * time.Duration(getEnvInt("DB_STATEMENT_TIMEOUT_MS", 5000)),

		FontDir:             os.Getenv("FONT_DIR"),
		DefaultCredits:      getEnvInt("DEFAULT_CREDITS", 200),
		AdminMaxCredits:     getEnvInt("ADMIN_MAX_CREDITS", 1000),
		CreditResetInterval: time.Hour * time.Duration(getEnvInt("CREDIT_RESET_HOURS", 24)),
		AdminBootstrapEmail: strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_BOOTSTRAP_EMAIL"))),

		CORSAllowedOrigins: parseList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = cfg.DBMaxConns
	}

	switch cfg.BlobProvider {
	case BlobProviderFilesystem:
	case BlobProviderCloudinary:
		if cfg.CloudinaryCloudName == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME is required for the cloudinary blob provider")
		}
	case BlobProviderS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 blob provider")
		}
	default:
		return nil, fmt.Errorf("unknown BLOB_PROVIDER %q", cfg.BlobProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// parseList splits a comma separated value, dropping blanks and duplicates.
func parseList(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

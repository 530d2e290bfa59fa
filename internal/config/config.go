package config

import (
	"os"
	"strconv"
	"time"

	"github.com/hypernova-labs/fbr-service/internal/models"
	"github.com/joho/godotenv"
)

const (
	minFBRTimeout = 10 * time.Second
	maxFBRTimeout = 30 * time.Second
)

// Config representa la configuración del servidor
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Email     EmailConfig
	FBR       FBRConfig
	Supabase  SupabaseConfig
}

// ServerConfig representa la configuración del servidor HTTP
type ServerConfig struct {
	Port    string
	Host    string
	Env     string
	BaseURL string
}

// DatabaseConfig representa la configuración de la base de datos
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig representa la configuración de Redis
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig representa la configuración de rate limiting por API key
type RateLimitConfig struct {
	Default int
}

// LoggingConfig representa la configuración de logging
type LoggingConfig struct {
	Level  string
	Format string
}

// EmailConfig representa la configuración de email
type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
}

// FBRConfig representa la configuración de la API de FBR
type FBRConfig struct {
	SandboxURL        string
	ProductionURL     string
	Timeout           time.Duration
	HealthTimeout     time.Duration
	Scope             string
	RequestsPerSecond float64
	Burst             int
	RemoteValidation  bool
	StatusRetries     int
	DefaultCurrency   string
	Fake              bool
}

// SupabaseConfig representa el almacenamiento S3 de Supabase para imágenes QR
type SupabaseConfig struct {
	StorageEndpoint string
	StorageRegion   string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe; no es crítico si falta
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8081"),
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Env:     getEnv("SERVER_ENV", "development"),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Name:     getEnv("PGDATABASE", "fbr_service"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Default: getEnvAsInt("RATE_LIMIT_DEFAULT", 120),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromAddress:  getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		},
		FBR: FBRConfig{
			SandboxURL:        getEnv("FBR_SANDBOX_URL", "https://iris-sandbox.fbr.gov.pk/api/v1"),
			ProductionURL:     getEnv("FBR_PRODUCTION_URL", "https://iris.fbr.gov.pk/api/v1"),
			Timeout:           getEnvAsDuration("FBR_TIMEOUT", 30*time.Second),
			HealthTimeout:     getEnvAsDuration("FBR_HEALTH_TIMEOUT", 10*time.Second),
			Scope:             getEnv("FBR_SCOPE", "fbr_invoice_api"),
			RequestsPerSecond: getEnvAsFloat("FBR_REQUESTS_PER_SECOND", 5),
			Burst:             getEnvAsInt("FBR_BURST", 5),
			RemoteValidation:  getEnvAsBool("FBR_REMOTE_VALIDATION", true),
			StatusRetries:     getEnvAsInt("FBR_STATUS_RETRIES", 2),
			DefaultCurrency:   getEnv("FBR_DEFAULT_CURRENCY", "PKR"),
			Fake:              getEnvAsBool("FBR_FAKE", false),
		},
		Supabase: SupabaseConfig{
			StorageEndpoint: getEnv("SUPABASE_STORAGE_ENDPOINT", ""),
			StorageRegion:   getEnv("SUPABASE_STORAGE_REGION", ""),
			AccessKeyID:     getEnv("SUPABASE_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("SUPABASE_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("SUPABASE_BUCKET", "fbr-qr-codes"),
		},
	}

	config.Validate()

	return config, nil
}

// Validate ajusta los valores fuera de rango. Las llamadas a FBR siempre
// quedan acotadas entre 10 y 30 segundos.
func (c *Config) Validate() {
	c.FBR.Timeout = clampDuration(c.FBR.Timeout, minFBRTimeout, maxFBRTimeout)
	c.FBR.HealthTimeout = clampDuration(c.FBR.HealthTimeout, minFBRTimeout, maxFBRTimeout)
	if c.FBR.RequestsPerSecond <= 0 {
		c.FBR.RequestsPerSecond = 5
	}
	if c.FBR.Burst <= 0 {
		c.FBR.Burst = 1
	}
	if c.FBR.StatusRetries < 0 {
		c.FBR.StatusRetries = 0
	}
	if c.RateLimit.Default <= 0 {
		c.RateLimit.Default = 120
	}
}

// getEnv obtiene una variable de entorno o retorna un valor por defecto
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt obtiene una variable de entorno como entero
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat obtiene una variable de entorno como número decimal
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool obtiene una variable de entorno como booleano
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration obtiene una variable de entorno como duración
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// IsDevelopment retorna true si el entorno es de desarrollo
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction retorna true si el entorno es de producción
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetDSN retorna la cadena de conexión a la base de datos
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=" + c.Database.SSLMode
}

// GetRedisAddr retorna la dirección de Redis
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// FBRBaseURL retorna la URL base de FBR para el ambiente
func (c *Config) FBRBaseURL(env models.Environment) string {
	if env == models.EnvironmentProduction {
		return c.FBR.ProductionURL
	}
	return c.FBR.SandboxURL
}

package config

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Amazon   AmazonConfig   `env:",prefix=AMAZON_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=30s"`
}

type PostgresConfig struct {
	Host           string `env:"HOST,default=localhost"`
	Port           string `env:"PORT,default=5432"`
	User           string `env:"USER,default=amazon_connect"`
	Password       string `env:"PASSWORD,default=amazon_connect_password"`
	DBName         string `env:"DB,default=amazon_connect_db"`
	SSLMode        string `env:"SSLMODE,default=disable"`
	MigrationsPath string `env:"MIGRATIONS_PATH,default="`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// AmazonConfig holds LWA (Login with Amazon) and SP-API settings.
// LWA client credentials are intentionally not marked required: a missing
// client id is reported as a configuration error when the OAuth flow is
// started, not at boot.
type AmazonConfig struct {
	LWAClientID           string   `env:"LWA_CLIENT_ID"`
	LWAClientSecret       string   `env:"LWA_CLIENT_SECRET"`
	TokenEndpoint         string   `env:"TOKEN_ENDPOINT,default=https://api.amazon.com/auth/o2/token"`
	ConsentEndpoint       string   `env:"CONSENT_ENDPOINT,default=https://sellercentral.amazon.com/apps/authorize/consent"`
	APIEndpoint           string   `env:"API_ENDPOINT,default=https://sellingpartnerapi-na.amazon.com"`
	AWSAccessKeyID        string   `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey    string   `env:"AWS_SECRET_ACCESS_KEY"`
	DefaultRegion         string   `env:"DEFAULT_REGION,default=us-east-1"`
	DefaultMarketplaceIDs []string `env:"DEFAULT_MARKETPLACE_IDS,default=ATVPDKIKX0DER"`
	CallbackPath          string   `env:"CALLBACK_PATH,default=/auth/amazon/callback"`
	OrdersWindow          Duration `env:"ORDERS_WINDOW,default=30d"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

type SecurityConfig struct {
	TokenCipherKey    string   `env:"TOKEN_CIPHER_KEY,required"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=authorization,x-client-info,apikey,content-type"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// URL returns the PostgreSQL connection URL used by the migrations runner.
func (p PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// CipherKey decodes the base64-encoded token cipher key.
func (s SecurityConfig) CipherKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s.TokenCipherKey)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_CIPHER_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("TOKEN_CIPHER_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Auth.JWTSecret) < 32 {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters long")
	}

	if _, err := config.Security.CipherKey(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "metro"
	defaultRedisAddr     = "localhost:6379"
	defaultJWTSecret     = "change-me-in-production"
	defaultAppPort       = "8080"
	defaultGRPCPort      = "50051"
	defaultAppEnv        = "local"
	defaultTokenTTL      = "2h"
	defaultBcryptCost    = "10"
	defaultStripeAPIURL  = "https://api.stripe.com"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once and freezes the result.
// All accessors call Load themselves, so an explicit call is only needed
// when the caller wants to react to a load error at boot.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":               defaultAppPort,
		"APP_ENV":                defaultAppEnv,
		"GRPC_PORT":              defaultGRPCPort,
		"MONGO_URI":              defaultMongoURI,
		"MONGO_DATABASE":         defaultMongoDatabase,
		"REDIS_ADDR":             defaultRedisAddr,
		"REDIS_PASSWORD":         "",
		"JWT_SECRET":             defaultJWTSecret,
		"TOKEN_TTL":              defaultTokenTTL,
		"BCRYPT_COST":            defaultBcryptCost,
		"STRIPE_KEY":             "",
		"STRIPE_PUBLISHABLE_KEY": "",
		"STRIPE_API_URL":         defaultStripeAPIURL,
		"WEBHOOK_SIGNING_SECRET": "",
	}
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func GRPCPort() string {
	_ = Load()
	return get("GRPC_PORT", defaultGRPCPort)
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// TokenTTL is the lifetime of issued bearer tokens.
func TokenTTL() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("TOKEN_TTL", defaultTokenTTL))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultTokenTTL)
	}
	return d
}

// BcryptCost is the bcrypt cost factor used for password hashing.
func BcryptCost() int {
	_ = Load()
	n, err := strconv.Atoi(get("BCRYPT_COST", defaultBcryptCost))
	if err != nil || n < 4 || n > 31 {
		return 10
	}
	return n
}

// ── Stripe ───────────────────────────────────────────────────────────────────

func StripeKey() string            { _ = Load(); return get("STRIPE_KEY", "") }
func StripePublishableKey() string { _ = Load(); return get("STRIPE_PUBLISHABLE_KEY", "") }
func StripeAPIURL() string         { _ = Load(); return get("STRIPE_API_URL", defaultStripeAPIURL) }
func WebhookSigningSecret() string { _ = Load(); return get("WEBHOOK_SIGNING_SECRET", "") }

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:8080/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// .env entries override app.json; real environment variables beat both.
	if env, err := godotenv.Read(envPath); err == nil {
		for key, val := range env {
			k := strings.ToUpper(strings.TrimSpace(key))
			if k == "" {
				continue
			}
			loaded[k] = strings.TrimSpace(val)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", envPath, err)
	}

	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

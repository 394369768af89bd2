package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration
	BcryptCost  int
	HTTPPort    string
	CORSOrigins []string
	Env         string
	LogLevel    string
	IPLookupURL string
}

// Load reads the process environment (after a best-effort .env load) into a
// Config. Defaults match the reference deployment; DATABASE_URL has no
// default and is validated by the caller.
func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      24 * time.Hour,
		BcryptCost:  bcrypt.DefaultCost,
		HTTPPort:    getenv("HTTP_PORT", "8080"),
		Env:         getenv("APP_ENV", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		IPLookupURL: getenv("IP_LOOKUP_URL", "https://api.ipify.org?format=json"),
	}
	if s := os.Getenv("JWT_EXPIRES_IN"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.JWTTTL = d
		}
	}
	if s := os.Getenv("BCRYPT_COST"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= bcrypt.MinCost && n <= bcrypt.MaxCost {
			cfg.BcryptCost = n
		}
	}
	if s := os.Getenv("CORS_ORIGINS"); s != "" {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}

// Production reports whether the process runs with production hardening
// (Secure cookies).
func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package main

import (
	"net/http"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"corpsite/internal/auth"
	"corpsite/internal/config"
	"corpsite/internal/httpserver"
	"corpsite/internal/logger"
	"corpsite/internal/models"
	"corpsite/internal/netutil"
	"corpsite/internal/service"
)

func main() {
	cfg := config.Load()
	lg := logger.New(cfg.Env, cfg.LogLevel)
	defer lg.Sync()

	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.JWTSecret == "" {
		// Token-dependent endpoints fail closed with 500 until this is set.
		lg.Warnw("JWT_SECRET is empty, auth endpoints will reject all requests")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}

	hasher := auth.Hasher{Cost: cfg.BcryptCost}
	tokens := auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}
	accounts := service.NewAccounts(db, hasher, lg)
	accounts.LookupIP = netutil.NewIPLookup(cfg.IPLookupURL).PublicIP

	router := httpserver.NewRouter(httpserver.Options{
		DB:           db,
		Logger:       lg,
		Tokens:       tokens,
		Accounts:     accounts,
		Views:        service.NewViews(db),
		CORSOrigins:  cfg.CORSOrigins,
		SecureCookie: cfg.Production(),
	})

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

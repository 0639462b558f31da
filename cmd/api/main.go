package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"quotestudio/internal/adapter/repo"
	"quotestudio/internal/compose"
	"quotestudio/internal/http/handlers"
	"quotestudio/internal/http/httpapi"
	"quotestudio/internal/identity"
	"quotestudio/internal/infra"
	"quotestudio/internal/infra/credentials"
	"quotestudio/internal/infra/geoip"
	"quotestudio/internal/ledger"
	"quotestudio/internal/providers/quote"
	"quotestudio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	redisClient, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	var sessions identity.SessionStore
	if redisClient != nil {
		defer redisClient.Close()
		sessions = identity.NewRedisSessionStore(redisClient)
	} else {
		logger.Warn().Msg("REDIS_URL not set, sessions are kept in memory")
		sessions = identity.NewMemorySessionStore()
	}

	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	fonts, err := compose.NewFontRegistry()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load fonts")
	}
	if cfg.FontDir != "" {
		n, err := fonts.LoadDir(cfg.FontDir)
		if err != nil {
			logger.Fatal().Err(err).Str("dir", cfg.FontDir).Msg("failed to load font directory")
		}
		logger.Info().Int("fonts", n).Str("dir", cfg.FontDir).Msg("fonts loaded")
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.BlobProvider).Msg("failed to configure blob store")
	}

	profiles := repo.NewProfileRepository(sqlRunner)
	usage := repo.NewUsageRepository(sqlRunner)
	credits := ledger.NewService(profiles, usage, ledger.Policy{
		DefaultCredits:  cfg.DefaultCredits,
		ResetInterval:   cfg.CreditResetInterval,
		AdminMaxCredits: cfg.AdminMaxCredits,
	}, logger)

	auth := identity.NewService(identity.Options{
		Accounts:            repo.NewAccountRepository(sqlRunner),
		Profiles:            profiles,
		NewProfile:          credits.NewProfile,
		Tokens:              identity.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Sessions:            sessions,
		BootstrapAdminEmail: cfg.AdminBootstrapEmail,
		Logger:              logger,
	})
	auth.OnAuthStateChange(identity.AuditAuthState(usage, logger))

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Identity: auth,
		Ledger:   credits,
		Profiles: profiles,
		Stats:    repo.NewStatsRepository(sqlRunner),
		Usage:    usage,
		Engine:   compose.NewEngine(fonts),
		Quotes:   quote.NewStaticGenerator(nil),
		Blobs:    storage.Instrumented{Store: blobs, Provider: cfg.BlobProvider},
		Uploads:  credentials.NewStore(sqlRunner),
		Checks:   map[string]handlers.Pinger{"database": sqlRunner, "sessions": sessions},
	}

	opts := httpapi.Options{
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   resolver.Lookup(),
		RateLimitPerMin: cfg.RateLimitPerMin,
	}
	if cfg.BlobProvider == infra.BlobProviderFilesystem {
		opts.StaticDir = cfg.StorageDir
	}
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, opts))

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger.Info().Str("blob_provider", cfg.BlobProvider).Str("addr", server.Addr()).Msg("starting")
	if err := server.Run(runCtx, logger); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}

func newBlobStore(cfg *infra.Config) (storage.BlobStore, error) {
	switch cfg.BlobProvider {
	case infra.BlobProviderCloudinary:
		return storage.NewCloudinaryStore(cfg.CloudinaryBaseURL, cfg.CloudinaryCloudName, nil), nil
	case infra.BlobProviderS3:
		return storage.NewS3Store(storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return storage.NewFileStore(cfg.StorageDir, cfg.StorageBaseURL)
	}
}

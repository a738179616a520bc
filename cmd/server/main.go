package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gadai/backend/config"
	httpDelivery "github.com/gadai/backend/internal/delivery/http"
	"github.com/gadai/backend/internal/domain"
	"github.com/gadai/backend/internal/infrastructure/cache"
	"github.com/gadai/backend/internal/infrastructure/database"
	"github.com/gadai/backend/internal/infrastructure/gadaiapi"
	"github.com/gadai/backend/internal/infrastructure/rulefile"
	"github.com/gadai/backend/internal/logging"
	"github.com/gadai/backend/internal/usecase"
	"github.com/gadai/backend/internal/version"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	logger := logging.GetLogger("server")

	logger.Info().
		Str("version", version.Version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("rulesSource", cfg.Rules.Source).
		Dur("ruleCacheTTL", cfg.Rules.CacheTTL).
		Bool("audit", cfg.Audit.Enabled).
		Msg("starting Mata service")

	var db *gorm.DB
	if cfg.NeedsDatabase() {
		db, err = database.Open(database.Config{
			Driver: cfg.Database.Driver,
			DSN:    cfg.Database.DSN,
			Debug:  cfg.Server.Environment == "development",
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		defer database.Close(db)

		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				logger.Fatal().Err(err).Msg("failed to migrate database")
			}
			logger.Info().Msg("database migrated")
		}
	}

	source, err := newRuleSource(cfg, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure rule source")
	}

	var audit domain.MatchAuditRecorder
	if cfg.Audit.Enabled {
		audit = database.NewMatchAuditRepository(db)
	}

	memoryCache := cache.NewMemoryCache(0)
	defer memoryCache.Close()

	mataService := usecase.NewMataService(
		memoryCache,
		source,
		audit,
		usecase.MataServiceConfig{
			RuleCacheTTL:       cfg.Rules.CacheTTL,
			EnableDebugLogging: cfg.Rules.DebugLogging,
		},
	)

	handler := httpDelivery.NewHandler(mataService)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newRuleSource builds the rule source selected by rules.source
func newRuleSource(cfg *config.Config, db *gorm.DB) (domain.RuleSource, error) {
	switch cfg.Rules.Source {
	case config.SourceAPI:
		client := gadaiapi.NewClient(gadaiapi.Config{
			BaseURL:    cfg.API.BaseURL,
			Token:      cfg.API.Token,
			Timeout:    cfg.API.Timeout,
			PageSize:   cfg.API.PageSize,
			RatePerSec: cfg.API.RatePerSec,
		})
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		return client, nil
	case config.SourceDatabase:
		if db == nil {
			return nil, errors.New("database rule source needs a database connection")
		}
		return database.NewPawnTermRepository(db), nil
	case config.SourceFile:
		return rulefile.NewLoader(cfg.RulesFile.Path), nil
	default:
		return nil, fmt.Errorf("unknown rules source %q", cfg.Rules.Source)
	}
}

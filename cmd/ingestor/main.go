package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/cupid"
	"staybook/internal/adapters/observability"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/shared"
	mysqlrepo "staybook/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("base", cfg.CupidBase).
		Int("workers", cfg.Workers).
		Int("properties", len(cfg.PropertyIDs)).
		Msg("ingestor starting")
	if len(cfg.PropertyIDs) == 0 {
		log.Warn().Msg("INGEST_PROPERTY_IDS is empty, nothing to import")
		return
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	client, err := cupid.New(cfg.CupidBase, cfg.CupidKey, cfg.CupidRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Cupid client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	hotels := app.NewHotelService(repo, cache, cfg.CacheTTL, cfg.RequestTimeout)
	imp := app.NewCatalogImporter(client, repo, hotels, domain.Cents(cfg.DefaultNightlyRate), cfg.DefaultTotalRooms)

	rep, err := imp.ImportAll(ctx, cfg.PropertyIDs, cfg.Workers)
	if err != nil {
		log.Error().Err(err).Msg("ingestion interrupted")
	}
	log.Info().
		Int64("imported", rep.Imported).
		Int64("skipped", rep.Skipped).
		Int64("failed", rep.Failed).
		Msg("ingestion completed")
}

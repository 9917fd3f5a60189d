package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"guestflat/internal/adapters/directory"
	"guestflat/internal/adapters/export"
	"guestflat/internal/adapters/observability"
	redisad "guestflat/internal/adapters/redis"
	"guestflat/internal/app"
	"guestflat/internal/shared"
	mysqlrepo "guestflat/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("dir", cfg.ExportDir).
		Int("workers", cfg.ExportWorkers).
		Int("year", cfg.ExportYear).
		Str("schedule", cfg.ExportSchedule).
		Msg("exporter starting")

	engine, err := cfg.PricingEngine()
	if err != nil {
		log.Fatal().Err(err).Msg("pricing config invalid")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")
	defer db.Close()

	dir, err := directory.New(cfg.DirectoryBase, cfg.DirectoryKey, cfg.DirectoryRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize directory client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	q := app.NewQueryService(mysqlrepo.New(db), cache, dir, engine, cfg.CacheTTL)
	job := &exportJob{src: q, dir: cfg.ExportDir, workers: cfg.ExportWorkers, formats: export.FileFormats}

	if cfg.ExportSchedule == "" {
		if err := job.runYear(context.Background(), cfg.ExportYear); err != nil {
			log.Fatal().Err(err).Msg("export failed")
		}
		log.Info().Msg("export completed")
		return
	}

	// Scheduled runs always export the current year.
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(cfg.ExportSchedule, func() {
		year := time.Now().UTC().Year()
		if err := job.runYear(context.Background(), year); err != nil {
			log.Error().Err(err).Int("year", year).Msg("scheduled export failed")
			return
		}
		log.Info().Int("year", year).Msg("scheduled export completed")
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ExportSchedule).Msg("invalid EXPORT_SCHEDULE")
	}
	c.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	<-c.Stop().Done()
	log.Info().Msg("exporter stopped")
}

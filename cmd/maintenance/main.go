// Command maintenance runs the expiry sweeps once and exits. Schedule it
// from cron.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"classifieds/internal/database"
	"classifieds/internal/modules/maintenance"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/pkg/metrics"
	"classifieds/internal/repository"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

type options struct {
	DatabaseURL string        `long:"database-url" env:"DATABASE_URL" default:"classifieds.db" description:"PostgreSQL DSN or SQLite file"`
	LogLevel    string        `long:"log-level" env:"LOG_LEVEL" default:"info" description:"debug, info, warn or error"`
	Timeout     time.Duration `long:"timeout" default:"2m" description:"Abort the sweep after this long"`
}

func main() {
	_ = godotenv.Load()

	var opts options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	log := logger.New("classifieds-maintenance", opts.LogLevel)

	db, err := database.Connect(opts.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	sweeper := maintenance.NewSweeper(
		repository.NewListingRepository(db),
		repository.NewHighlightRepository(db),
		log,
		metrics.Noop(),
	)
	if _, err := sweeper.Run(ctx, time.Now().UTC()); err != nil {
		log.WithError(err).Error("maintenance finished with errors")
		cancel()
		os.Exit(1)
	}
}

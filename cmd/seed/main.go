// Command seed loads tags, plans and staff accounts from a YAML fixture.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"classifieds/internal/database"
	"classifieds/internal/pkg/logger"
	"classifieds/internal/seed"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type options struct {
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" default:"classifieds.db" description:"PostgreSQL DSN or SQLite file"`
	Fixture     string `short:"f" long:"fixture" default:"seed.yaml" description:"YAML file with tags, plans and staff"`
	Migrate     bool   `long:"migrate" description:"Run schema migrations before seeding"`
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

	log := logger.New("classifieds-seed", "info")

	file, err := os.Open(opts.Fixture)
	if err != nil {
		log.WithError(err).Fatal("cannot open fixture")
	}
	fixture, err := seed.Load(file)
	_ = file.Close()
	if err != nil {
		log.WithError(err).Fatal("invalid fixture")
	}

	db, err := database.Connect(opts.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if opts.Migrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	sum, err := seed.Apply(ctx, db, fixture, log)
	if err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.WithFields(logrus.Fields{"tags": sum.Tags, "plans": sum.Plans, "staff": sum.Staff}).Info("seed complete")
}

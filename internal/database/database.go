package database

import (
	"strings"
	"time"

	"classifieds/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens PostgreSQL for postgres:// DSNs and SQLite otherwise.
// Timestamps are always written in UTC so that SQLite's textual time
// comparisons agree with PostgreSQL's.
func Connect(dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.WithField("dsn", dsn).Info("using SQLite for local development")
	db, err := OpenSQLite(dsn, cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens the pure-Go SQLite driver. SQLite allows one writer, so
// the pool is pinned to a single connection.
func OpenSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.UserRole{},
		&domain.AdvertiserProfile{},
		&domain.VerificationDocument{},
		&domain.Plan{},
		&domain.Subscription{},
		&domain.ServiceTag{},
		&domain.Listing{},
		&domain.ListingPhoto{},
		&domain.ListingTag{},
		&domain.Highlight{},
		&domain.Report{},
		&domain.AdminActionLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Package dbtest provides throwaway SQLite databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"classifieds/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated in-memory database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())

	db, err := database.OpenSQLite(dsn, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

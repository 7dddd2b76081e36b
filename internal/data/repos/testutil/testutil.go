package testutil

import (
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/qrcodes-backend/internal/data/db"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

var (
	dbOnce sync.Once
	testDB *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens the shared test database: Postgres when TEST_POSTGRES_DSN is set,
// otherwise an in-memory SQLite database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		cfg := &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		}
		if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
			testDB, dbErr = gorm.Open(postgres.Open(dsn), cfg)
		} else {
			testDB, dbErr = gorm.Open(sqlite.Open("file::memory:?cache=shared"), cfg)
			if dbErr == nil {
				// single connection so every session sees the same in-memory db
				sqlDB, err := testDB.DB()
				if err != nil {
					dbErr = err
					return
				}
				sqlDB.SetMaxOpenConns(1)
			}
		}
		if dbErr != nil {
			return
		}
		dbErr = db.AutoMigrateAll(testDB)
	})

	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return testDB
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

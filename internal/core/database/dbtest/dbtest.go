// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sweet-shop/internal/core/database"
)

var testDBSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:sweetshop_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// one connection: the in-memory database lives as long as it does
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		sqlDB.Close()
		t.Fatalf("creating test database schema: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// NewFileDB opens a SQLite file under t.TempDir() through the production
// driver path with a pool of conns connections, so transactions really
// run side by side.
func NewFileDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "shop.db") +
		"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: conns,
		MaxIdleConns: conns,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("opening file database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("opening file database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("creating file database schema: %v", err)
	}
	return db
}

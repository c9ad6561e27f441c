// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"sync/atomic"
	"testing"

	"leadtrail/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t. The pool
// is pinned to one connection so every query sees the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.Migrations()...))
	return db
}

// CountLockingReads counts queries on db that carry a FOR UPDATE/SHARE
// clause. SQLite drops the clause from the SQL, so the statement is inspected.
func CountLockingReads(t testing.TB, db *gorm.DB) *atomic.Int64 {
	t.Helper()
	var n atomic.Int64
	err := db.Callback().Query().Before("gorm:query").Register("testutil:count_locking", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Clauses["FOR"]; ok {
			n.Add(1)
		}
	})
	require.NoError(t, err)
	return &n
}

func Ptr[T any](v T) *T { return &v }

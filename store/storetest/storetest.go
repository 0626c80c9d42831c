// Package storetest opens throwaway migrated databases for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"pos-api/config"
	"pos-api/models"
	"pos-api/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a Store backed by a fresh SQLite file in t.TempDir().
func Open(t testing.TB) *store.Store {
	t.Helper()
	s, _ := OpenDB(t)
	return s
}

// OpenDB is Open that also hands back the gorm handle, for tests that hook
// gorm callbacks.
func OpenDB(t testing.TB) (*store.Store, *gorm.DB) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "pos.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := config.Open("sqlite", dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	s := store.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return s, db
}

// Menu inserts an AVAILABLE menu with the given price.
func Menu(t testing.TB, s *store.Store, name, price string) *models.Menu {
	t.Helper()
	m := &models.Menu{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Status: models.MenuAvailable,
	}
	if err := s.CreateMenu(context.Background(), m); err != nil {
		t.Fatalf("create menu %s: %v", name, err)
	}
	return m
}

// Category inserts a category.
func Category(t testing.TB, s *store.Store, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

// Package store is the gorm-backed persistence layer for the catalog, the
// order ledger and user accounts.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pos-api/apperr"
	"pos-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicate marks a unique constraint violation reported by the database.
var ErrDuplicate = errors.New("duplicate key")

// Store wraps a *gorm.DB. Inside InTx the wrapped handle is the transaction,
// so the same methods serve both plain and transactional callers.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the schema.
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Menu{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InTx runs fn inside one database transaction. fn's error rolls it back.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// IsUniqueViolation reports whether err comes from a unique index. gorm
// translates most drivers' errors to gorm.ErrDuplicatedKey; the pgx and
// SQLite checks cover errors that bypass the translator.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// classify turns driver errors into ErrDuplicate, an apperr.NotFound for
// missing rows, or an apperr.Store wrapping anything unexpected.
func classify(op string, err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", what)
	case IsUniqueViolation(err):
		return fmt.Errorf("%s: %w: %v", op, ErrDuplicate, err)
	default:
		return apperr.Store(op, err)
	}
}

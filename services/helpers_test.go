package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pos-api/models"
	"pos-api/store"
	"pos-api/store/storetest"

	"github.com/shopspring/decimal"
)

var testDay = time.Date(2026, 10, 16, 10, 30, 0, 0, time.UTC)

var staff = Actor{UserID: 1, Role: models.RoleStaff}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	store    *store.Store
	clock    *clock
	ledger   *Ledger
	payments *Payments
	catalog  *Catalog
	stats    *Stats
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := storetest.Open(t)
	c := &clock{t: testDay}
	log := discardLogger()
	return &fixture{
		store: s,
		clock: c,
		ledger: NewLedger(s, nil, log, LedgerConfig{
			CodeAttempts: 3,
			WalkInName:   "Walk-in customer",
			Location:     time.UTC,
			Now:          c.Now,
		}),
		payments: NewPayments(s, nil, log, c.Now),
		catalog:  NewCatalog(s, nil, log),
		stats:    NewStats(s, time.UTC, c.Now),
	}
}

func (f *fixture) order(t *testing.T, items ...OrderItemInput) *models.Order {
	t.Helper()
	o, err := f.ledger.CreateOrder(context.Background(), CreateOrderInput{Items: items})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("%s = %s, want %s", what, got, want)
	}
}

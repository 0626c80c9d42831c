// Package services holds the POS business rules: the order ledger, payment
// processing, catalog management, reporting and user accounts. Every
// operation runs against an explicitly injected *store.Store.
package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"pos-api/apperr"
	"pos-api/events"
	"pos-api/models"
	"pos-api/store"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

// OrderRef identifies an order by id or by code. ID wins when both are set.
type OrderRef struct {
	ID   uint
	Code string
}

// ParseOrderRef reads a path segment that is either a numeric id or an
// order code, optionally written with a leading '#'.
func ParseOrderRef(s string) (OrderRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OrderRef{}, apperr.Validation("order id or code is required")
	}
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		if id == 0 {
			return OrderRef{}, apperr.Validation("invalid order id")
		}
		return OrderRef{ID: uint(id)}, nil
	}
	return OrderRef{Code: s}, nil
}

func (r OrderRef) String() string {
	if r.ID != 0 {
		return strconv.FormatUint(uint64(r.ID), 10)
	}
	return r.Code
}

func findOrder(ctx context.Context, s *store.Store, ref OrderRef) (*models.Order, error) {
	if ref.ID != 0 {
		return s.GetOrder(ctx, ref.ID)
	}
	code := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(ref.Code), "#"))
	if code == "" {
		return nil, apperr.Validation("orderId or code is required")
	}
	return s.GetOrderByCode(ctx, code)
}

// publish sends ev and logs failures; callers have already committed.
func publish(ctx context.Context, pub events.Publisher, log *slog.Logger, ev events.Event) {
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("publish event failed", "event", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

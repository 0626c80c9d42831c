package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pos-api/models"

	"github.com/shopspring/decimal"
)

// Period is a half-open created_at range [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// PeriodTotal is the count and revenue of PAID orders in one Period.
type PeriodTotal struct {
	Orders  int64
	Revenue decimal.Decimal
}

// PaidTotalsByPeriod sums PAID orders per period in a single grouped query.
// periods must be sorted and contiguous. The result is indexed like
// periods; a period without sales has zero values.
// Rows are bucketed by the period bounds, not by a date function, so day
// boundaries follow the caller's time zone on every driver.
func (s *Store) PaidTotalsByPeriod(ctx context.Context, periods []Period) ([]PeriodTotal, error) {
	totals := make([]PeriodTotal, len(periods))
	for i := range totals {
		totals[i].Revenue = decimal.Zero
	}
	if len(periods) == 0 {
		return totals, nil
	}

	var b strings.Builder
	args := make([]any, 0, 2*len(periods))
	b.WriteString("CASE")
	for i, p := range periods {
		fmt.Fprintf(&b, " WHEN created_at >= ? AND created_at < ? THEN %d", i)
		args = append(args, p.From.UTC(), p.To.UTC())
	}
	b.WriteString(" ELSE -1 END AS bucket, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue")

	var rows []struct {
		Bucket  int
		Orders  int64
		Revenue decimal.Decimal
	}
	err := s.conn(ctx).Model(&models.Order{}).
		Select(b.String(), args...).
		Where("status = ? AND created_at >= ? AND created_at < ?",
			models.StatusPaid, periods[0].From.UTC(), periods[len(periods)-1].To.UTC()).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, classify("sum paid orders", err, "order")
	}
	for _, r := range rows {
		if r.Bucket >= 0 && r.Bucket < len(totals) {
			totals[r.Bucket] = PeriodTotal{Orders: r.Orders, Revenue: r.Revenue}
		}
	}
	return totals, nil
}

// MethodSales is the count and revenue of PAID orders settled one way.
type MethodSales struct {
	Method  models.PaymentMethod
	Orders  int64
	Revenue decimal.Decimal
}

func (s *Store) PaidTotalsByMethod(ctx context.Context) ([]MethodSales, error) {
	var rows []MethodSales
	err := s.conn(ctx).Model(&models.Order{}).
		Select("method, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue").
		Where("status = ? AND method IS NOT NULL", models.StatusPaid).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, classify("sum paid orders by method", err, "order")
	}
	return rows, nil
}

// DishSales is the quantity and revenue of one menu across PAID orders.
// Name is the snapshot name from the items; MenuName is the current name
// when the menu still exists.
type DishSales struct {
	MenuID   uint
	Name     string
	MenuName *string
	Qty      int64
	Revenue  decimal.Decimal
}

// TopPaidDishes ranks menus by quantity sold, then revenue, then id.
// Revenue uses the snapshot prices.
func (s *Store) TopPaidDishes(ctx context.Context, limit int) ([]DishSales, error) {
	var rows []DishSales
	err := s.conn(ctx).Table("order_items").
		Select("order_items.menu_id, MAX(order_items.name) AS name, MAX(menus.name) AS menu_name, " +
			"SUM(order_items.qty) AS qty, SUM(order_items.qty * order_items.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("LEFT JOIN menus ON menus.id = order_items.menu_id").
		Where("orders.status = ?", models.StatusPaid).
		Group("order_items.menu_id").
		Order("SUM(order_items.qty) DESC").
		Order("SUM(order_items.qty * order_items.price) DESC").
		Order("order_items.menu_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, classify("rank paid dishes", err, "order item")
	}
	return rows, nil
}

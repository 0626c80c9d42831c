package services

import (
	"context"
	"testing"
	"time"

	"pos-api/models"
	"pos-api/store/storetest"
)

// seedSales creates paid and unpaid orders across three days:
// two days ago one QR sale, yesterday nothing, today one cash sale and one
// open order.
func seedSales(t *testing.T, f *fixture) (rice, tea *models.Menu) {
	t.Helper()
	ctx := context.Background()
	rice = storetest.Menu(t, f.store, "Basil chicken rice", "65")
	tea = storetest.Menu(t, f.store, "Thai iced tea", "35")

	f.clock.t = testDay.AddDate(0, 0, -2)
	old := f.order(t, OrderItemInput{MenuID: tea.ID, Qty: 4})
	if _, err := f.payments.PayQR(ctx, staff, OrderRef{ID: old.ID}, nil); err != nil {
		t.Fatalf("pay: %v", err)
	}

	f.clock.t = testDay
	today := f.order(t, OrderItemInput{MenuID: rice.ID, Qty: 2}, OrderItemInput{MenuID: tea.ID, Qty: 1})
	if _, err := f.payments.PayCash(ctx, staff, OrderRef{ID: today.ID}, dec("200"), nil); err != nil {
		t.Fatalf("pay: %v", err)
	}
	f.order(t, OrderItemInput{MenuID: rice.ID, Qty: 10})
	return rice, tea
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	seedSales(t, f)

	ov, err := f.stats.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	assertDecimal(t, "revenue today", ov.RevenueToday, "165")
	assertDecimal(t, "avg ticket", ov.AvgTicket, "165")
	if ov.OrdersToday != 1 || ov.InProgress != 1 {
		t.Fatalf("overview = %+v", ov)
	}
}

func TestDaily(t *testing.T) {
	f := newFixture(t)
	seedSales(t, f)

	days, err := f.stats.Daily(context.Background(), 3)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	want := []struct {
		date    string
		revenue string
		orders  int
	}{
		{"2026-10-14", "140", 1},
		{"2026-10-15", "0", 0},
		{"2026-10-16", "165", 1},
	}
	if len(days) != len(want) {
		t.Fatalf("got %d buckets, want %d", len(days), len(want))
	}
	for i, w := range want {
		if days[i].Date != w.date || days[i].Orders != w.orders {
			t.Fatalf("bucket %d = %+v, want %+v", i, days[i], w)
		}
		assertDecimal(t, days[i].Date, days[i].Revenue, w.revenue)
	}
}

func TestMonthly(t *testing.T) {
	f := newFixture(t)
	seedSales(t, f)

	months, err := f.stats.Monthly(context.Background(), 2)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(months) != 2 || months[0].Month != "2026-09" || months[1].Month != "2026-10" {
		t.Fatalf("months = %+v", months)
	}
	if months[1].Orders != 2 {
		t.Fatalf("october orders = %d, want 2", months[1].Orders)
	}
	assertDecimal(t, "october", months[1].Revenue, "305")
	assertDecimal(t, "september", months[0].Revenue, "0")
}

func TestPaymentBreakdown(t *testing.T) {
	f := newFixture(t)
	seedSales(t, f)

	totals, err := f.stats.PaymentBreakdown(context.Background())
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(totals) != 2 || totals[0].Method != models.MethodCash || totals[1].Method != models.MethodQR {
		t.Fatalf("totals = %+v", totals)
	}
	assertDecimal(t, "cash", totals[0].Revenue, "165")
	assertDecimal(t, "qr", totals[1].Revenue, "140")
}

func TestTopDishes(t *testing.T) {
	f := newFixture(t)
	rice, tea := seedSales(t, f)

	dishes, err := f.stats.TopDishes(context.Background(), 0)
	if err != nil {
		t.Fatalf("top dishes: %v", err)
	}
	// The open order's 10 rice are not counted.
	if len(dishes) != 2 || dishes[0].MenuID != tea.ID || dishes[1].MenuID != rice.ID {
		t.Fatalf("dishes = %+v", dishes)
	}
	if dishes[0].Qty != 5 || dishes[1].Qty != 2 {
		t.Fatalf("qty = %d, %d", dishes[0].Qty, dishes[1].Qty)
	}
	assertDecimal(t, "tea revenue", dishes[0].Revenue, "175")

	one, err := f.stats.TopDishes(context.Background(), 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("limit 1 = %+v, %v", one, err)
	}
}

func TestDailyBucketsFollowTimeZone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tea := storetest.Menu(t, f.store, "Thai iced tea", "35")

	// 20:00 UTC on the 15th is already the 16th in Bangkok.
	f.clock.t = time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)
	late := f.order(t, OrderItemInput{MenuID: tea.ID, Qty: 1})
	if _, err := f.payments.PayQR(ctx, staff, OrderRef{ID: late.ID}, nil); err != nil {
		t.Fatalf("pay: %v", err)
	}
	f.clock.t = testDay
	now := f.order(t, OrderItemInput{MenuID: tea.ID, Qty: 2})
	if _, err := f.payments.PayQR(ctx, staff, OrderRef{ID: now.ID}, nil); err != nil {
		t.Fatalf("pay: %v", err)
	}

	bangkok := NewStats(f.store, time.FixedZone("ICT", 7*60*60), f.clock.Now)
	days, err := bangkok.Daily(ctx, 2)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if len(days) != 2 || days[0].Date != "2026-10-15" || days[0].Orders != 0 ||
		days[1].Date != "2026-10-16" || days[1].Orders != 2 {
		t.Fatalf("days = %+v", days)
	}
	assertDecimal(t, "revenue on the 16th", days[1].Revenue, "105")

	utc, err := f.stats.Daily(ctx, 2)
	if err != nil {
		t.Fatalf("daily utc: %v", err)
	}
	if utc[0].Orders != 1 || utc[1].Orders != 1 {
		t.Fatalf("utc days = %+v", utc)
	}
}

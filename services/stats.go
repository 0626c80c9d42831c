package services

import (
	"context"
	"time"

	"pos-api/models"
	"pos-api/store"

	"github.com/shopspring/decimal"
)

const (
	defaultDailyDays   = 14
	maxDailyDays       = 366
	defaultMonthlySpan = 6
	maxMonthlySpan     = 60
	defaultTopDishes   = 5
	maxTopDishes       = 100
)

// Stats computes read-only rollups over PAID orders.
type Stats struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewStats(s *store.Store, loc *time.Location, now func() time.Time) *Stats {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Stats{store: s, loc: loc, now: now}
}

type Overview struct {
	RevenueToday decimal.Decimal `json:"revenueToday"`
	OrdersToday  int             `json:"ordersToday"`
	AvgTicket    decimal.Decimal `json:"avgTicket"`
	InProgress   int64           `json:"inProgress"`
}

// Overview summarises today's paid business and the number of open orders.
func (s *Stats) Overview(ctx context.Context) (*Overview, error) {
	from := startOfDay(s.now().In(s.loc))
	totals, err := s.store.PaidTotalsByPeriod(ctx, []store.Period{{From: from, To: from.AddDate(0, 0, 1)}})
	if err != nil {
		return nil, err
	}
	open, err := s.store.CountOrdersByStatus(ctx, models.StatusUnpaid)
	if err != nil {
		return nil, err
	}

	today := totals[0]
	ov := &Overview{
		RevenueToday: today.Revenue.Round(2),
		OrdersToday:  int(today.Orders),
		AvgTicket:    decimal.Zero,
		InProgress:   open,
	}
	if today.Orders > 0 {
		ov.AvgTicket = today.Revenue.Div(decimal.NewFromInt(today.Orders)).Round(2)
	}
	return ov, nil
}

type DayBucket struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Daily returns one bucket per day for the last days days, today included,
// oldest first. Days without sales are present with zero values.
func (s *Stats) Daily(ctx context.Context, days int) ([]DayBucket, error) {
	if days <= 0 {
		days = defaultDailyDays
	}
	if days > maxDailyDays {
		days = maxDailyDays
	}
	today := startOfDay(s.now().In(s.loc))
	from := today.AddDate(0, 0, -(days - 1))
	periods := make([]store.Period, days)
	for i := range periods {
		periods[i] = store.Period{From: from.AddDate(0, 0, i), To: from.AddDate(0, 0, i+1)}
	}
	totals, err := s.store.PaidTotalsByPeriod(ctx, periods)
	if err != nil {
		return nil, err
	}

	buckets := make([]DayBucket, days)
	for i, t := range totals {
		buckets[i] = DayBucket{
			Date:    periods[i].From.Format("2006-01-02"),
			Revenue: t.Revenue.Round(2),
			Orders:  int(t.Orders),
		}
	}
	return buckets, nil
}

type MonthBucket struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Monthly is Daily by calendar month.
func (s *Stats) Monthly(ctx context.Context, months int) ([]MonthBucket, error) {
	if months <= 0 {
		months = defaultMonthlySpan
	}
	if months > maxMonthlySpan {
		months = maxMonthlySpan
	}
	current := startOfMonth(s.now().In(s.loc))
	from := current.AddDate(0, -(months - 1), 0)
	periods := make([]store.Period, months)
	for i := range periods {
		periods[i] = store.Period{From: from.AddDate(0, i, 0), To: from.AddDate(0, i+1, 0)}
	}
	totals, err := s.store.PaidTotalsByPeriod(ctx, periods)
	if err != nil {
		return nil, err
	}

	buckets := make([]MonthBucket, months)
	for i, t := range totals {
		buckets[i] = MonthBucket{
			Month:   periods[i].From.Format("2006-01"),
			Revenue: t.Revenue.Round(2),
			Orders:  int(t.Orders),
		}
	}
	return buckets, nil
}

type MethodTotal struct {
	Method  models.PaymentMethod `json:"method"`
	Orders  int                  `json:"orders"`
	Revenue decimal.Decimal      `json:"revenue"`
}

// PaymentBreakdown totals PAID orders per payment method. Both methods are
// always listed, CASH first.
func (s *Stats) PaymentBreakdown(ctx context.Context) ([]MethodTotal, error) {
	sales, err := s.store.PaidTotalsByMethod(ctx)
	if err != nil {
		return nil, err
	}
	totals := []MethodTotal{
		{Method: models.MethodCash, Revenue: decimal.Zero},
		{Method: models.MethodQR, Revenue: decimal.Zero},
	}
	for _, m := range sales {
		for i := range totals {
			if totals[i].Method == m.Method {
				totals[i].Orders = int(m.Orders)
				totals[i].Revenue = m.Revenue.Round(2)
			}
		}
	}
	return totals, nil
}

type Dish struct {
	MenuID  uint            `json:"menuId"`
	Name    string          `json:"name"`
	Qty     int             `json:"qty"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TopDishes ranks dishes by quantity sold across PAID orders, revenue
// breaking ties. Revenue uses the prices the items were sold at.
func (s *Stats) TopDishes(ctx context.Context, limit int) ([]Dish, error) {
	if limit <= 0 {
		limit = defaultTopDishes
	}
	if limit > maxTopDishes {
		limit = maxTopDishes
	}
	sales, err := s.store.TopPaidDishes(ctx, limit)
	if err != nil {
		return nil, err
	}

	dishes := make([]Dish, len(sales))
	for i, d := range sales {
		name := d.Name
		if d.MenuName != nil {
			name = *d.MenuName
		}
		dishes[i] = Dish{MenuID: d.MenuID, Name: name, Qty: int(d.Qty), Revenue: d.Revenue.Round(2)}
	}
	return dishes, nil
}

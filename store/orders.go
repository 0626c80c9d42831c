package store

import (
	"context"
	"time"

	"pos-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderFilter controls ListOrders.
type OrderFilter struct {
	Status models.OrderStatus // empty means all
	Limit  int
	Asc    bool
}

// withItems preloads items and the live menu display fields. The live
// fields are for display only; totals come from the items' snapshot.
func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id asc")
	}).Preload("Items.Menu", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "price", "image_ref", "status")
	})
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := withItems(s.conn(ctx)).First(&o, id).Error; err != nil {
		return nil, classify("get order", err, "order")
	}
	return &o, nil
}

func (s *Store) GetOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	var o models.Order
	if err := withItems(s.conn(ctx)).Where("code = ?", code).First(&o).Error; err != nil {
		return nil, classify("get order", err, "order")
	}
	return &o, nil
}

// ListOrders returns summary rows without items.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	dir := "desc"
	if f.Asc {
		dir = "asc"
	}
	q := s.conn(ctx).
		Select("id", "code", "customer_name", "status", "total", "method", "created_at", "updated_at").
		Order("created_at " + dir).Order("id " + dir).
		Limit(f.Limit)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, classify("list orders", err, "order")
	}
	return orders, nil
}

// CountOrdersWithCodePrefix counts orders whose code starts with prefix.
func (s *Store) CountOrdersWithCodePrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Order{}).Where("code LIKE ?", prefix+"%").Count(&n).Error
	if err != nil {
		return 0, classify("count orders", err, "order")
	}
	return n, nil
}

// CreateOrder inserts o and its items. A taken code returns an error
// wrapping ErrDuplicate.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return classify("create order", s.conn(ctx).Create(o).Error, "order")
}

// Settlement is what a successful payment writes onto an order.
type Settlement struct {
	Method     models.PaymentMethod
	AmountPaid decimal.Decimal
	Change     decimal.Decimal
	Note       *string
	PaidAt     time.Time
	PaidBy     uint
}

// MarkPaid moves an UNPAID order to PAID. It is a compare-and-set on the
// status column: it reports false when the order was no longer UNPAID.
func (s *Store) MarkPaid(ctx context.Context, id uint, st Settlement) (bool, error) {
	updates := map[string]any{
		"status":      models.StatusPaid,
		"method":      st.Method,
		"amount_paid": st.AmountPaid,
		"change_due":  st.Change,
		"paid_at":     st.PaidAt,
		"paid_by":     st.PaidBy,
	}
	if st.Note != nil {
		updates["note"] = *st.Note
	}
	res := s.conn(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.StatusUnpaid).
		Updates(updates)
	if res.Error != nil {
		return false, classify("mark order paid", res.Error, "order")
	}
	return res.RowsAffected == 1, nil
}

// OrderDetails names the free-text fields UpdateOrderDetails writes. A nil
// CustomerName is left alone; SetNote with a nil Note clears the note.
type OrderDetails struct {
	CustomerName *string
	SetNote      bool
	Note         *string
}

// UpdateOrderDetails changes free-text fields only. Status and money
// columns are never written here.
func (s *Store) UpdateOrderDetails(ctx context.Context, id uint, d OrderDetails) error {
	updates := map[string]any{}
	if d.CustomerName != nil {
		updates["customer_name"] = *d.CustomerName
	}
	if d.SetNote {
		updates["note"] = d.Note
	}
	if len(updates) == 0 {
		return nil
	}
	res := s.conn(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return classify("update order", res.Error, "order")
	}
	return nil
}

func (s *Store) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Order{}).Where("status = ?", status).Count(&n).Error; err != nil {
		return 0, classify("count orders", err, "order")
	}
	return n, nil
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the payment state of an order
type OrderStatus string

const (
	StatusUnpaid OrderStatus = "UNPAID"
	StatusPaid   OrderStatus = "PAID"
)

// ParseOrderStatus maps query input to a status. PENDING is still sent by
// older clients and means UNPAID.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNPAID", "PENDING":
		return StatusUnpaid, nil
	case "PAID":
		return StatusPaid, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// PaymentMethod records how a PAID order was settled
type PaymentMethod string

const (
	MethodCash PaymentMethod = "CASH"
	MethodQR   PaymentMethod = "QR"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodCash:
		return MethodCash, nil
	case MethodQR:
		return MethodQR, nil
	default:
		return "", fmt.Errorf("unsupported payment method %q: must be CASH or QR", s)
	}
}

const (
	orderCodePrefix = "ORD-"
	orderCodeDay    = "20060102"
)

// OrderCodeDayPrefix returns the prefix shared by every order code issued
// on day, e.g. "ORD-20261016-".
func OrderCodeDayPrefix(day time.Time) string {
	return orderCodePrefix + day.Format(orderCodeDay) + "-"
}

// FormatOrderCode builds the human readable code for the seq-th order of day.
func FormatOrderCode(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%04d", OrderCodeDayPrefix(day), seq)
}

// ChangeFor returns the change owed when paid is tendered against total.
// It is never negative.
func ChangeFor(total, paid decimal.Decimal) decimal.Decimal {
	if paid.LessThanOrEqual(total) {
		return decimal.Zero
	}
	return paid.Sub(total)
}

type Order struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Code         string           `json:"code" gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerName string           `json:"customerName" gorm:"not null"`
	Status       OrderStatus      `json:"status" gorm:"type:varchar(16);not null;default:'UNPAID';index"`
	Total        decimal.Decimal  `json:"total" gorm:"type:numeric(12,2);not null"`
	Method       *PaymentMethod   `json:"method" gorm:"type:varchar(16)"`
	AmountPaid   *decimal.Decimal `json:"amountPaid" gorm:"type:numeric(12,2)"`
	Change       *decimal.Decimal `json:"change" gorm:"column:change_due;type:numeric(12,2)"`
	Note         *string          `json:"note"`
	PaidAt       *time.Time       `json:"paidAt"`
	PaidBy       *uint            `json:"paidBy"`
	Items        []OrderItem      `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// IsPaid reports whether the order has been settled.
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// ItemsTotal sums qty * snapshot price over the order's items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type OrderItem struct {
	ID      uint            `json:"id" gorm:"primaryKey"`
	OrderID uint            `json:"orderId" gorm:"not null;index"`
	MenuID  uint            `json:"menuId" gorm:"not null;index"`
	Menu    *Menu           `json:"menu,omitempty" gorm:"foreignKey:MenuID;constraint:OnDelete:RESTRICT"`
	Name    string          `json:"name" gorm:"not null"` // snapshot name
	Qty     int             `json:"qty" gorm:"not null"`
	Price   decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"` // snapshot price at time of order
	Note    *string         `json:"note"`
}

// LineTotal is qty * snapshot price.
func (it OrderItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Qty)))
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// MenuStatus controls whether a dish can be put on a new order
type MenuStatus string

const (
	MenuAvailable   MenuStatus = "AVAILABLE"
	MenuUnavailable MenuStatus = "UNAVAILABLE"
)

// ParseMenuStatus accepts either status case-insensitively. An empty value
// means AVAILABLE, matching how new dishes are created from the admin UI.
func ParseMenuStatus(s string) (MenuStatus, error) {
	switch MenuStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case "", MenuAvailable:
		return MenuAvailable, nil
	case MenuUnavailable:
		return MenuUnavailable, nil
	default:
		return "", fmt.Errorf("unknown menu status %q", s)
	}
}

type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	NameKey   string    `json:"-" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryKey is the case-folded form of a category name; two names with
// the same key are the same category.
func CategoryKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

type Menu struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"not null;index"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	CategoryID *uint           `json:"categoryId" gorm:"index"`
	Category   *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Status     MenuStatus      `json:"status" gorm:"type:varchar(16);not null;default:'AVAILABLE'"`
	ImageRef   *string         `json:"imageRef"`
	ImageURL   string          `json:"imageUrl,omitempty" gorm:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Orderable reports whether the dish may be added to a new order.
func (m *Menu) Orderable() bool {
	return m.Status == MenuAvailable
}

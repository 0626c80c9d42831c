// Package seed loads demo users, categories, dishes and a sample order.
// Running it again changes nothing that already exists.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pos-api/apperr"
	"pos-api/models"
	"pos-api/services"
	"pos-api/store"

	"github.com/shopspring/decimal"
)

type dish struct {
	Name     string
	Price    string
	Category string
	Status   models.MenuStatus
}

var demoUsers = []services.NewUserInput{
	{Name: "Admin", Email: "admin@pos.local", Password: "admin123", Role: models.RoleAdmin},
	{Name: "Staff", Email: "staff@pos.local", Password: "staff123", Role: models.RoleStaff},
}

var demoDishes = []dish{
	{"Basil chicken rice with fried egg", "65", "Rice dishes", models.MenuAvailable},
	{"Pad Thai with shrimp", "80", "Noodles", models.MenuAvailable},
	{"Tom Yum Goong", "120", "Soups", models.MenuAvailable},
	{"Thai iced tea", "35", "Drinks", models.MenuAvailable},
	{"Omelette rice with minced pork", "55", "Rice dishes", models.MenuUnavailable},
}

// Seeder writes the demo data through the services, so every business rule
// applies to it.
type Seeder struct {
	Store   *store.Store
	Users   *services.Users
	Catalog *services.Catalog
	Ledger  *services.Ledger
	Log     *slog.Logger
}

func (s *Seeder) Run(ctx context.Context) error {
	for _, in := range demoUsers {
		if _, err := s.Users.Ensure(ctx, in); err != nil {
			return fmt.Errorf("seed user %s: %w", in.Email, err)
		}
	}

	categories, err := s.ensureCategories(ctx)
	if err != nil {
		return err
	}
	menus, err := s.ensureDishes(ctx, categories)
	if err != nil {
		return err
	}
	if err := s.ensureSampleOrder(ctx, menus); err != nil {
		return err
	}

	s.Log.Info("demo data seeded", "users", len(demoUsers), "categories", len(categories), "menus", len(menus))
	return nil
}

func (s *Seeder) ensureCategories(ctx context.Context) (map[string]uint, error) {
	ids := map[string]uint{}
	for _, d := range demoDishes {
		if _, ok := ids[d.Category]; ok {
			continue
		}
		cat, err := s.Store.FindCategoryByName(ctx, d.Category)
		if errors.Is(err, apperr.ErrNotFound) {
			cat, err = s.Catalog.CreateCategory(ctx, d.Category)
		}
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", d.Category, err)
		}
		ids[d.Category] = cat.ID
	}
	return ids, nil
}

// ensureDishes matches existing menus by name and refreshes their price,
// status and category.
func (s *Seeder) ensureDishes(ctx context.Context, categories map[string]uint) ([]models.Menu, error) {
	existing, err := s.Catalog.ListMenus(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]uint, len(existing))
	for _, m := range existing {
		byName[strings.ToLower(m.Name)] = m.ID
	}

	menus := make([]models.Menu, 0, len(demoDishes))
	for _, d := range demoDishes {
		name := d.Name
		price := decimal.RequireFromString(d.Price)
		status := string(d.Status)
		categoryID := categories[d.Category]
		in := services.MenuInput{Name: &name, Price: &price, Status: &status, CategoryID: &categoryID}

		var m *models.Menu
		if id, ok := byName[strings.ToLower(d.Name)]; ok {
			m, err = s.Catalog.UpdateMenu(ctx, id, in)
		} else {
			m, err = s.Catalog.CreateMenu(ctx, in)
		}
		if err != nil {
			return nil, fmt.Errorf("seed menu %s: %w", d.Name, err)
		}
		menus = append(menus, *m)
	}
	return menus, nil
}

// ensureSampleOrder opens one UNPAID order when the ledger is empty.
func (s *Seeder) ensureSampleOrder(ctx context.Context, menus []models.Menu) error {
	orders, err := s.Ledger.ListOrders(ctx, services.ListOrdersInput{Limit: 1})
	if err != nil {
		return err
	}
	if len(orders) > 0 || len(menus) < 2 {
		return nil
	}
	note := "less spicy"
	o, err := s.Ledger.CreateOrder(ctx, services.CreateOrderInput{
		Items: []services.OrderItemInput{
			{MenuID: menus[0].ID, Qty: 1, Note: &note},
			{MenuID: menus[1].ID, Qty: 2},
		},
	})
	if err != nil {
		return fmt.Errorf("seed sample order: %w", err)
	}
	s.Log.Info("sample order created", "code", o.Code, "total", o.Total.String())
	return nil
}

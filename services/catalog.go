package services

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	"pos-api/apperr"
	"pos-api/models"
	"pos-api/store"

	"github.com/shopspring/decimal"
)

// ImageRemover deletes a stored image that a menu no longer references.
type ImageRemover interface {
	Remove(ref string) error
}

// Catalog manages menus and categories.
type Catalog struct {
	store  *store.Store
	images ImageRemover
	log    *slog.Logger
}

func NewCatalog(s *store.Store, images ImageRemover, log *slog.Logger) *Catalog {
	return &Catalog{store: s, images: images, log: log.With("component", "catalog")}
}

// ── Categories ──────────────────────────────────────────────────────────────

func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	return c.store.ListCategories(ctx)
}

func categoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("category name is required")
	}
	return name, nil
}

// CreateCategory adds a category. Names are unique ignoring case.
func (c *Catalog) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}
	cat := &models.Category{Name: name}
	if err := c.store.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("category %q already exists", name)
		}
		return nil, err
	}
	return cat, nil
}

func (c *Catalog) RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}
	var cat *models.Category
	err = c.store.InTx(ctx, func(tx *store.Store) error {
		var err error
		cat, err = tx.FindCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		cat.Name = name
		return tx.SaveCategory(ctx, cat)
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("category %q already exists", name)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes an unused category. A category still referenced
// by a menu is never deleted.
func (c *Catalog) DeleteCategory(ctx context.Context, id uint) error {
	return c.store.InTx(ctx, func(tx *store.Store) error {
		cat, err := tx.FindCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		n, err := tx.CountMenusInCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.ReferentialIntegrity("category %q is used by %d menu(s)", cat.Name, n)
		}
		_, err = tx.DeleteCategory(ctx, id)
		return err
	})
}

// ── Menus ───────────────────────────────────────────────────────────────────

// MenuInput carries menu fields. Nil pointers leave a field unchanged on
// update. A CategoryID of 0 clears the category and an empty ImageRef
// clears the image.
type MenuInput struct {
	Name       *string
	Price      *decimal.Decimal
	CategoryID *uint
	Status     *string
	ImageRef   *string
}

func (c *Catalog) ListMenus(ctx context.Context, status string, categoryID uint) ([]models.Menu, error) {
	f := store.MenuFilter{CategoryID: categoryID}
	if strings.TrimSpace(status) != "" {
		st, err := models.ParseMenuStatus(status)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		f.Status = st
	}
	return c.store.ListMenus(ctx, f)
}

func (c *Catalog) GetMenu(ctx context.Context, id uint) (*models.Menu, error) {
	return c.store.GetMenu(ctx, id)
}

func (c *Catalog) CreateMenu(ctx context.Context, in MenuInput) (*models.Menu, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Price == nil {
		return nil, apperr.Validation("price is required")
	}
	m := &models.Menu{Status: models.MenuAvailable}
	var created *models.Menu
	err := c.store.InTx(ctx, func(tx *store.Store) error {
		if err := applyMenuInput(ctx, tx, m, in); err != nil {
			return err
		}
		if err := tx.CreateMenu(ctx, m); err != nil {
			return err
		}
		var err error
		created, err = tx.GetMenu(ctx, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("menu created", "menu_id", created.ID, "name", created.Name, "price", created.Price.String())
	return created, nil
}

// UpdateMenu applies a partial update. Prices on existing orders are
// snapshots and are not affected.
func (c *Catalog) UpdateMenu(ctx context.Context, id uint, in MenuInput) (*models.Menu, error) {
	var (
		updated  *models.Menu
		orphaned *string
	)
	err := c.store.InTx(ctx, func(tx *store.Store) error {
		m, err := tx.GetMenu(ctx, id)
		if err != nil {
			return err
		}
		oldImage := m.ImageRef
		if err := applyMenuInput(ctx, tx, m, in); err != nil {
			return err
		}
		m.Category = nil
		if err := tx.SaveMenu(ctx, m); err != nil {
			return err
		}
		if oldImage != nil && !sameImage(*oldImage, m.ImageRef) {
			// Another menu may point at the same file.
			n, err := tx.CountMenusUsingImage(ctx, imageName(*oldImage), id)
			if err != nil {
				return err
			}
			if n == 0 {
				orphaned = oldImage
			}
		}
		updated, err = tx.GetMenu(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if orphaned != nil && c.images != nil {
		if err := c.images.Remove(*orphaned); err != nil {
			c.log.Warn("remove replaced image failed", "menu_id", id, "image", *orphaned, "error", err)
		}
	}
	return updated, nil
}

func imageName(ref string) string {
	return path.Base(strings.TrimSpace(ref))
}

// sameImage reports whether ref still names the file old names.
func sameImage(old string, ref *string) bool {
	return ref != nil && imageName(*ref) == imageName(old)
}

func applyMenuInput(ctx context.Context, tx *store.Store, m *models.Menu, in MenuInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("name must not be empty")
		}
		m.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperr.Validation("price must not be negative")
		}
		m.Price = in.Price.Round(2)
	}
	if in.Status != nil {
		st, err := models.ParseMenuStatus(*in.Status)
		if err != nil {
			return apperr.Validation("%s", err.Error())
		}
		m.Status = st
	}
	if in.CategoryID != nil {
		if *in.CategoryID == 0 {
			m.CategoryID = nil
		} else {
			if _, err := tx.FindCategoryByID(ctx, *in.CategoryID); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return apperr.Reference("category %d does not exist", *in.CategoryID)
				}
				return err
			}
			id := *in.CategoryID
			m.CategoryID = &id
		}
	}
	if in.ImageRef != nil {
		m.ImageRef = trimmedOrNil(in.ImageRef)
	}
	return nil
}

// ResetAll deletes every menu together with all orders and order items.
func (c *Catalog) ResetAll(ctx context.Context, actor Actor) (store.ResetCounts, error) {
	var counts store.ResetCounts
	err := c.store.InTx(ctx, func(tx *store.Store) error {
		var err error
		counts, err = tx.ResetCatalog(ctx)
		return err
	})
	if err != nil {
		return store.ResetCounts{}, err
	}
	c.log.Warn("catalog reset",
		"by", actor.UserID, "menus", counts.Menus, "orders", counts.Orders, "order_items", counts.OrderItems)
	return counts, nil
}

package store

import (
	"context"

	"pos-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MenuFilter narrows ListMenus. Zero values mean no filter.
type MenuFilter struct {
	Status     models.MenuStatus
	CategoryID uint
}

func (s *Store) ListMenus(ctx context.Context, f MenuFilter) ([]models.Menu, error) {
	q := s.conn(ctx).Preload("Category").Order("id asc")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	var menus []models.Menu
	if err := q.Find(&menus).Error; err != nil {
		return nil, classify("list menus", err, "menu")
	}
	return menus, nil
}

func (s *Store) GetMenu(ctx context.Context, id uint) (*models.Menu, error) {
	var m models.Menu
	if err := s.conn(ctx).Preload("Category").First(&m, id).Error; err != nil {
		return nil, classify("get menu", err, "menu")
	}
	return &m, nil
}

// FindMenusByIDs returns the menus that exist among ids, in id order.
// Missing ids are simply absent from the result.
func (s *Store) FindMenusByIDs(ctx context.Context, ids []uint) ([]models.Menu, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var menus []models.Menu
	if err := s.conn(ctx).Where("id IN ?", ids).Order("id asc").Find(&menus).Error; err != nil {
		return nil, classify("find menus", err, "menu")
	}
	return menus, nil
}

func (s *Store) CreateMenu(ctx context.Context, m *models.Menu) error {
	return classify("create menu", s.conn(ctx).Omit(clause.Associations).Create(m).Error, "menu")
}

// SaveMenu writes every column of m, including nil pointers.
func (s *Store) SaveMenu(ctx context.Context, m *models.Menu) error {
	return classify("save menu", s.conn(ctx).Omit(clause.Associations).Save(m).Error, "menu")
}

func (s *Store) CountMenusInCategory(ctx context.Context, categoryID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Menu{}).Where("category_id = ?", categoryID).Count(&n).Error
	if err != nil {
		return 0, classify("count menus", err, "menu")
	}
	return n, nil
}

// CountMenusUsingImage counts menus other than excludeID whose image ref
// names the stored file name, either bare or behind a path prefix.
func (s *Store) CountMenusUsingImage(ctx context.Context, name string, excludeID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Menu{}).
		Where("id <> ? AND (image_ref = ? OR image_ref LIKE ?)", excludeID, name, "%/"+name).
		Count(&n).Error
	if err != nil {
		return 0, classify("count menus", err, "menu")
	}
	return n, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.conn(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return nil, classify("list categories", err, "category")
	}
	return cats, nil
}

func (s *Store) FindCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		return nil, classify("get category", err, "category")
	}
	return &c, nil
}

// FindCategoryByName looks a category up case-insensitively.
func (s *Store) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := s.conn(ctx).Where("name_key = ?", models.CategoryKey(name)).First(&c).Error
	if err != nil {
		return nil, classify("find category", err, "category")
	}
	return &c, nil
}

// CreateCategory inserts c; a case-insensitive duplicate name returns an
// error wrapping ErrDuplicate.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	c.NameKey = models.CategoryKey(c.Name)
	return classify("create category", s.conn(ctx).Create(c).Error, "category")
}

func (s *Store) SaveCategory(ctx context.Context, c *models.Category) error {
	c.NameKey = models.CategoryKey(c.Name)
	return classify("save category", s.conn(ctx).Save(c).Error, "category")
}

// DeleteCategory removes the row and reports how many rows went away.
func (s *Store) DeleteCategory(ctx context.Context, id uint) (int64, error) {
	res := s.conn(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return 0, classify("delete category", res.Error, "category")
	}
	return res.RowsAffected, nil
}

// ResetCounts reports what a catalog reset deleted.
type ResetCounts struct {
	OrderItems int64 `json:"orderItems"`
	Orders     int64 `json:"orders"`
	Menus      int64 `json:"menus"`
}

// ResetCatalog deletes every order item, order and menu, in dependency
// order. Call it inside InTx so a failure leaves nothing half deleted.
func (s *Store) ResetCatalog(ctx context.Context) (ResetCounts, error) {
	var counts ResetCounts
	db := s.conn(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})

	res := db.Delete(&models.OrderItem{})
	if res.Error != nil {
		return counts, classify("reset order items", res.Error, "order item")
	}
	counts.OrderItems = res.RowsAffected

	res = db.Delete(&models.Order{})
	if res.Error != nil {
		return counts, classify("reset orders", res.Error, "order")
	}
	counts.Orders = res.RowsAffected

	res = db.Delete(&models.Menu{})
	if res.Error != nil {
		return counts, classify("reset menus", res.Error, "menu")
	}
	counts.Menus = res.RowsAffected
	return counts, nil
}

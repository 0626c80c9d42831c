package store

import (
	"context"
	"strings"

	"pos-api/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return classify("create user", s.conn(ctx).Create(u).Error, "user")
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, classify("find user", err, "user")
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, classify("get user", err, "user")
	}
	return &u, nil
}

// ListUsers returns staff accounts, optionally narrowed to one role.
func (s *Store) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	q := s.conn(ctx).Where("role IN ?", models.Roles).Order("id asc")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, classify("list users", err, "user")
	}
	return users, nil
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pos-api/apperr"
	"pos-api/models"
	"pos-api/store"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// Users manages staff accounts and checks credentials. Token issuing lives
// in the HTTP layer.
type Users struct {
	store    *store.Store
	log      *slog.Logger
	hashCost int
}

func NewUsers(s *store.Store, log *slog.Logger) *Users {
	return &Users{store: s, log: log.With("component", "users"), hashCost: bcrypt.DefaultCost}
}

type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// Signup registers a STAFF account. Admins are created by other admins.
func (u *Users) Signup(ctx context.Context, in NewUserInput) (*models.User, error) {
	in.Role = models.RoleStaff
	return u.Create(ctx, in)
}

// Create registers an account with the given role.
func (u *Users) Create(ctx context.Context, in NewUserInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("role must be ADMIN or STAFF")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.hashCost)
	if err != nil {
		return nil, apperr.Store("hash password", err)
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := u.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}
	u.log.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate checks an email and password pair.
func (u *Users) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	user, err := u.store.FindUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	return user, nil
}

func (u *Users) Get(ctx context.Context, id uint) (*models.User, error) {
	return u.store.FindUserByID(ctx, id)
}

func (u *Users) List(ctx context.Context, role string) ([]models.User, error) {
	var r models.UserRole
	if strings.TrimSpace(role) != "" {
		var err error
		if r, err = models.ParseRole(role); err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
	}
	return u.store.ListUsers(ctx, r)
}

// EnsureAdmin creates an ADMIN account for email unless one exists.
func (u *Users) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return u.Ensure(ctx, NewUserInput{Name: name, Email: email, Password: password, Role: models.RoleAdmin})
}

// Ensure creates the account unless its email is already registered, in
// which case the existing user is returned untouched.
func (u *Users) Ensure(ctx context.Context, in NewUserInput) (*models.User, error) {
	existing, err := u.store.FindUserByEmail(ctx, in.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return u.Create(ctx, in)
}

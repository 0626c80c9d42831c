package services

import (
	"context"
	"errors"
	"testing"

	"pos-api/apperr"
	"pos-api/models"
	"pos-api/store/storetest"

	"golang.org/x/crypto/bcrypt"
)

func newTestUsers(t *testing.T) *Users {
	t.Helper()
	u := NewUsers(storetest.Open(t), discardLogger())
	u.hashCost = bcrypt.MinCost
	return u
}

func TestSignupAlwaysCreatesStaff(t *testing.T) {
	u := newTestUsers(t)
	ctx := context.Background()

	user, err := u.Signup(ctx, NewUserInput{Name: "Noi", Email: "Noi@Example.com", Password: "secret1", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Role != models.RoleStaff {
		t.Fatalf("role = %s, want STAFF", user.Role)
	}
	if user.PasswordHash == "secret1" {
		t.Fatal("password stored in clear text")
	}

	_, err = u.Signup(ctx, NewUserInput{Name: "Other", Email: "noi@example.com", Password: "secret2"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	u := newTestUsers(t)
	tests := []struct {
		name string
		in   NewUserInput
	}{
		{"missing name", NewUserInput{Email: "a@b.c", Password: "secret1", Role: models.RoleStaff}},
		{"missing email", NewUserInput{Name: "A", Password: "secret1", Role: models.RoleStaff}},
		{"short password", NewUserInput{Name: "A", Email: "a@b.c", Password: "123", Role: models.RoleStaff}},
		{"bad role", NewUserInput{Name: "A", Email: "a@b.c", Password: "secret1", Role: "CHEF"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := u.Create(context.Background(), tt.in); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	u := newTestUsers(t)
	ctx := context.Background()
	created, err := u.Create(ctx, NewUserInput{Name: "Admin", Email: "admin@pos.local", Password: "admin123", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := u.Authenticate(ctx, "ADMIN@pos.local", "admin123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != created.ID || got.Role != models.RoleAdmin {
		t.Fatalf("got %+v", got)
	}

	for _, tc := range [][2]string{{"admin@pos.local", "wrong"}, {"nobody@pos.local", "admin123"}} {
		if _, err := u.Authenticate(ctx, tc[0], tc[1]); !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Fatalf("%s: expected unauthenticated, got %v", tc[0], err)
		}
	}
	if _, err := u.Authenticate(ctx, "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	u := newTestUsers(t)
	ctx := context.Background()

	first, err := u.EnsureAdmin(ctx, "Admin", "admin@pos.local", "admin123")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	second, err := u.EnsureAdmin(ctx, "Admin", "admin@pos.local", "changed")
	if err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("second call created user %d", second.ID)
	}

	if _, err := u.Signup(ctx, NewUserInput{Name: "Staff", Email: "staff@pos.local", Password: "staff123"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	admins, err := u.List(ctx, "admin")
	if err != nil || len(admins) != 1 {
		t.Fatalf("admins = %+v, %v", admins, err)
	}
	all, err := u.List(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("all = %+v, %v", all, err)
	}
	if _, err := u.List(ctx, "chef"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

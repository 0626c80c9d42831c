package statemachine

import (
	"strings"
	"testing"

	"pos-api/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   models.UserRole
		wantErr string
	}{
		{"staff pays", models.StatusUnpaid, models.StatusPaid, models.RoleStaff, ""},
		{"admin pays", models.StatusUnpaid, models.StatusPaid, models.RoleAdmin, ""},
		{"unknown role", models.StatusUnpaid, models.StatusPaid, models.UserRole("CUSTOMER"), "may not change"},
		{"no going back", models.StatusPaid, models.StatusUnpaid, models.RoleAdmin, "terminal"},
		{"paid to paid", models.StatusPaid, models.StatusPaid, models.RoleStaff, "terminal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPaidIsTerminal(t *testing.T) {
	if !IsTerminal(models.StatusPaid) {
		t.Fatal("PAID must be terminal")
	}
	if IsTerminal(models.StatusUnpaid) {
		t.Fatal("UNPAID must not be terminal")
	}
}

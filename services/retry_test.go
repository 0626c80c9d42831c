package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pos-api/store"
)

func TestRetryOnConflict(t *testing.T) {
	dup := fmt.Errorf("insert order: %w", store.ErrDuplicate)
	other := errors.New("disk full")

	tests := []struct {
		name      string
		attempts  int
		results   []error
		wantCalls int
		wantErr   error
	}{
		{"first try", 3, []error{nil}, 1, nil},
		{"succeeds after conflict", 3, []error{dup, nil}, 2, nil},
		{"gives up", 3, []error{dup, dup, dup}, 3, store.ErrDuplicate},
		{"other error is not retried", 3, []error{other}, 1, other},
		{"zero attempts means one", 0, []error{dup}, 1, store.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryOnConflict(context.Background(), tt.attempts, time.Millisecond, func(attempt int) error {
				if attempt != calls+1 {
					t.Fatalf("attempt = %d, want %d", attempt, calls+1)
				}
				calls++
				return tt.results[calls-1]
			})
			if calls != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryOnConflictStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryOnConflict(ctx, 5, time.Hour, func(int) error {
		calls++
		cancel()
		return store.ErrDuplicate
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

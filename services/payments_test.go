package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pos-api/apperr"
	"pos-api/events"
	"pos-api/events/mock_events"
	"pos-api/models"
	"pos-api/store/storetest"

	"go.uber.org/mock/gomock"
)

func TestPayCashScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := storetest.Menu(t, f.store, "Basil chicken rice", "65")
	b := storetest.Menu(t, f.store, "Pad Thai", "80")
	o := f.order(t, OrderItemInput{MenuID: a.ID, Qty: 1}, OrderItemInput{MenuID: b.ID, Qty: 2})

	paid, err := f.payments.PayCash(ctx, staff, OrderRef{ID: o.ID}, dec("300"), nil)
	if err != nil {
		t.Fatalf("pay cash: %v", err)
	}
	if paid.Status != models.StatusPaid {
		t.Fatalf("status = %s, want PAID", paid.Status)
	}
	if paid.Method == nil || *paid.Method != models.MethodCash {
		t.Fatalf("method = %v, want CASH", paid.Method)
	}
	assertDecimal(t, "amount paid", *paid.AmountPaid, "300")
	assertDecimal(t, "change", *paid.Change, "75")
	if paid.PaidAt == nil || paid.PaidBy == nil || *paid.PaidBy != staff.UserID {
		t.Fatalf("paidAt/paidBy not recorded: %+v", paid)
	}

	// Paying again is a no-op, even with an amount that would not cover
	// the total.
	again, err := f.payments.PayCash(ctx, staff, OrderRef{Code: o.Code}, dec("50"), nil)
	if err != nil {
		t.Fatalf("repeat payment: %v", err)
	}
	assertDecimal(t, "amount paid after repeat", *again.AmountPaid, "300")
	assertDecimal(t, "change after repeat", *again.Change, "75")

	viaQR, err := f.payments.PayQR(ctx, staff, OrderRef{ID: o.ID}, nil)
	if err != nil {
		t.Fatalf("qr after cash: %v", err)
	}
	if *viaQR.Method != models.MethodCash {
		t.Fatalf("method changed to %s", *viaQR.Method)
	}
}

func TestPayCashInsufficientLeavesOrderUnpaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := storetest.Menu(t, f.store, "Tom Yum Goong", "120")
	o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 1})

	_, err := f.payments.PayCash(ctx, staff, OrderRef{ID: o.ID}, dec("119.99"), nil)
	if !errors.Is(err, apperr.ErrInsufficientPayment) {
		t.Fatalf("expected insufficient payment, got %v", err)
	}
	got, err := f.ledger.GetOrder(ctx, OrderRef{ID: o.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusUnpaid || got.AmountPaid != nil {
		t.Fatalf("order changed after failed payment: %+v", got)
	}

	exact, err := f.payments.PayCash(ctx, staff, OrderRef{ID: o.ID}, dec("120"), nil)
	if err != nil {
		t.Fatalf("exact cash: %v", err)
	}
	assertDecimal(t, "change", *exact.Change, "0")
}

func TestPayCashRoundsToCents(t *testing.T) {
	tests := []struct {
		paid       string
		wantPaid   string
		wantChange string
	}{
		{"80.123456789", "80.12", "0.12"},
		{"79.996", "80", "0"},
		{"100.005", "100.01", "20.01"},
	}
	for _, tt := range tests {
		t.Run(tt.paid, func(t *testing.T) {
			f := newFixture(t)
			m := storetest.Menu(t, f.store, "Pad Thai", "80")
			o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 1})

			if _, err := f.payments.PayCash(context.Background(), staff, OrderRef{ID: o.ID}, dec(tt.paid), nil); err != nil {
				t.Fatalf("pay cash: %v", err)
			}
			got, err := f.ledger.GetOrder(context.Background(), OrderRef{ID: o.ID})
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			assertDecimal(t, "amount paid", *got.AmountPaid, tt.wantPaid)
			assertDecimal(t, "change", *got.Change, tt.wantChange)
		})
	}
}

func TestPayQRRecordsExactTotal(t *testing.T) {
	f := newFixture(t)
	m := storetest.Menu(t, f.store, "Thai iced tea", "35")
	o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 3})

	note := "ref 8841"
	paid, err := f.payments.PayQR(context.Background(), staff, OrderRef{ID: o.ID}, &note)
	if err != nil {
		t.Fatalf("pay qr: %v", err)
	}
	assertDecimal(t, "amount paid", *paid.AmountPaid, "105")
	assertDecimal(t, "change", *paid.Change, "0")
	if *paid.Method != models.MethodQR || paid.Note == nil || *paid.Note != note {
		t.Fatalf("unexpected order %+v", paid)
	}
}

func TestPayErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := storetest.Menu(t, f.store, "Pad Thai", "80")
	o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 1})
	amount := dec("100")
	negative := dec("-1")

	tests := []struct {
		name  string
		actor Actor
		in    PayInput
		want  error
	}{
		{"unknown id", staff, PayInput{Order: OrderRef{ID: 999}, Method: models.MethodQR}, apperr.ErrNotFound},
		{"unknown code", staff, PayInput{Order: OrderRef{Code: "ORD-20000101-0001"}, Method: models.MethodQR}, apperr.ErrNotFound},
		{"cash without amount", staff, PayInput{Order: OrderRef{ID: o.ID}, Method: models.MethodCash}, apperr.ErrValidation},
		{"negative cash", staff, PayInput{Order: OrderRef{ID: o.ID}, Method: models.MethodCash, AmountPaid: &negative}, apperr.ErrValidation},
		{"unsupported method", staff, PayInput{Order: OrderRef{ID: o.ID}, Method: "CARD", AmountPaid: &amount}, apperr.ErrValidation},
		{"no role", Actor{UserID: 7}, PayInput{Order: OrderRef{ID: o.ID}, Method: models.MethodQR}, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.payments.Pay(ctx, tt.actor, tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPaymentPublishesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	pub := mock_events.NewMockPublisher(ctrl)
	payments := NewPayments(f.store, pub, discardLogger(), f.clock.Now)

	m := storetest.Menu(t, f.store, "Pad Thai", "80")
	o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 2})

	var got []events.Event
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ev events.Event) error {
			got = append(got, ev)
			return nil
		}).Times(1)

	for i := 0; i < 3; i++ {
		if _, err := payments.PayQR(ctx, staff, OrderRef{ID: o.ID}, nil); err != nil {
			t.Fatalf("pay #%d: %v", i, err)
		}
	}
	if got[0].Type != events.OrderPaid || got[0].OrderID != o.ID || got[0].ItemCount != 2 {
		t.Fatalf("unexpected event %+v", got[0])
	}
	assertDecimal(t, "event total", got[0].Total, "160")
}

func TestPublishFailureDoesNotFailPayment(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	pub := mock_events.NewMockPublisher(ctrl)
	payments := NewPayments(f.store, pub, discardLogger(), f.clock.Now)
	m := storetest.Menu(t, f.store, "Pad Thai", "80")
	o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 1})

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	paid, err := payments.PayQR(context.Background(), staff, OrderRef{ID: o.ID}, nil)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if !paid.IsPaid() {
		t.Fatal("order should be paid")
	}
}

func TestConcurrentPaymentsApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := storetest.Menu(t, f.store, "Pad Thai", "80")
	o := f.order(t, OrderItemInput{MenuID: m.ID, Qty: 1})

	amounts := []string{"100", "500", "80", "1000"}
	results := make([]*models.Order, len(amounts))
	errs := make([]error, len(amounts))
	var wg sync.WaitGroup
	for i, a := range amounts {
		wg.Add(1)
		go func(i int, a string) {
			defer wg.Done()
			results[i], errs[i] = f.payments.PayCash(ctx, staff, OrderRef{ID: o.ID}, dec(a), nil)
		}(i, a)
	}
	wg.Wait()

	final, err := f.ledger.GetOrder(ctx, OrderRef{ID: o.ID})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := range amounts {
		if errs[i] != nil {
			t.Fatalf("payment %d: %v", i, errs[i])
		}
		if !results[i].AmountPaid.Equal(*final.AmountPaid) {
			t.Fatalf("payment %d saw amount %s, stored %s", i, results[i].AmountPaid, final.AmountPaid)
		}
	}
	assertDecimal(t, "change", *final.Change, final.AmountPaid.Sub(final.Total).String())
}

package services

import (
	"context"
	"log/slog"
	"time"

	"pos-api/apperr"
	"pos-api/events"
	"pos-api/models"
	"pos-api/statemachine"
	"pos-api/store"

	"github.com/shopspring/decimal"
)

// Payments settles orders. Settling is idempotent: paying an order that is
// already PAID returns it untouched.
type Payments struct {
	store  *store.Store
	events events.Publisher
	log    *slog.Logger
	now    func() time.Time
}

func NewPayments(s *store.Store, pub events.Publisher, log *slog.Logger, now func() time.Time) *Payments {
	if now == nil {
		now = time.Now
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Payments{store: s, events: pub, log: log.With("component", "payments"), now: now}
}

// PayInput is the method-agnostic payment request.
type PayInput struct {
	Order      OrderRef
	Method     models.PaymentMethod
	AmountPaid *decimal.Decimal // required for CASH, ignored for QR
	Note       *string
}

// Pay dispatches to PayCash or PayQR.
func (p *Payments) Pay(ctx context.Context, actor Actor, in PayInput) (*models.Order, error) {
	switch in.Method {
	case models.MethodCash:
		if in.AmountPaid == nil {
			return nil, apperr.Validation("amountPaid is required for cash payments")
		}
		return p.PayCash(ctx, actor, in.Order, *in.AmountPaid, in.Note)
	case models.MethodQR:
		return p.PayQR(ctx, actor, in.Order, in.Note)
	default:
		return nil, apperr.Validation("unsupported payment method %q: must be CASH or QR", in.Method)
	}
}

// PayCash settles an order with cash. amountPaid is rounded to cents and
// must cover the total; the difference is recorded as change.
func (p *Payments) PayCash(ctx context.Context, actor Actor, ref OrderRef, amountPaid decimal.Decimal, note *string) (*models.Order, error) {
	if amountPaid.IsNegative() {
		return nil, apperr.Validation("amountPaid must not be negative")
	}
	amountPaid = amountPaid.Round(2)
	return p.settle(ctx, actor, ref, models.MethodCash, note, func(total decimal.Decimal) (decimal.Decimal, error) {
		if amountPaid.LessThan(total) {
			return decimal.Zero, apperr.InsufficientPayment(
				"amount paid %s is less than the order total %s", amountPaid.StringFixed(2), total.StringFixed(2))
		}
		return amountPaid, nil
	})
}

// PayQR settles an order by QR transfer, which is always for the exact total.
func (p *Payments) PayQR(ctx context.Context, actor Actor, ref OrderRef, note *string) (*models.Order, error) {
	return p.settle(ctx, actor, ref, models.MethodQR, note, func(total decimal.Decimal) (decimal.Decimal, error) {
		return total, nil
	})
}

// settle re-reads the order inside the transaction that writes it. The
// write is conditional on the order still being UNPAID, so of two
// concurrent payments exactly one applies and the other sees the result.
func (p *Payments) settle(
	ctx context.Context,
	actor Actor,
	ref OrderRef,
	method models.PaymentMethod,
	note *string,
	tender func(total decimal.Decimal) (decimal.Decimal, error),
) (*models.Order, error) {
	var (
		result  *models.Order
		applied bool
	)
	err := p.store.InTx(ctx, func(tx *store.Store) error {
		order, err := findOrder(ctx, tx, ref)
		if err != nil {
			return err
		}
		if order.IsPaid() {
			result = order
			return nil
		}
		if err := statemachine.CanTransition(order.Status, models.StatusPaid, actor.Role); err != nil {
			return apperr.Forbidden("%s", err.Error())
		}

		paid, err := tender(order.Total)
		if err != nil {
			return err
		}
		applied, err = tx.MarkPaid(ctx, order.ID, store.Settlement{
			Method:     method,
			AmountPaid: paid,
			Change:     models.ChangeFor(order.Total, paid),
			Note:       trimmedOrNil(note),
			PaidAt:     p.now().UTC(),
			PaidBy:     actor.UserID,
		})
		if err != nil {
			return err
		}
		result, err = tx.GetOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if applied {
		p.log.Info("order paid",
			"order_id", result.ID, "code", result.Code, "method", method,
			"total", result.Total.String(), "paid_by", actor.UserID)
		publish(ctx, p.events, p.log, events.FromOrder(events.OrderPaid, result, p.now()))
	}
	return result, nil
}

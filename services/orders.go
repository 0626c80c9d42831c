package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pos-api/apperr"
	"pos-api/events"
	"pos-api/models"
	"pos-api/store"

	"github.com/shopspring/decimal"
)

const (
	defaultOrderListLimit = 200
	maxOrderListLimit     = 1000
)

// LedgerConfig tunes order creation.
type LedgerConfig struct {
	CodeAttempts int           // transactions tried before giving up on a code
	CodeBackoff  time.Duration // linear backoff step between attempts
	WalkInName   string        // customer name used when none is given
	Location     *time.Location
	Now          func() time.Time // defaults to time.Now
}

// Ledger creates and reads orders.
type Ledger struct {
	store  *store.Store
	events events.Publisher
	log    *slog.Logger
	cfg    LedgerConfig
}

func NewLedger(s *store.Store, pub events.Publisher, log *slog.Logger, cfg LedgerConfig) *Ledger {
	if cfg.CodeAttempts < 1 {
		cfg.CodeAttempts = 3
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if strings.TrimSpace(cfg.WalkInName) == "" {
		cfg.WalkInName = "Walk-in customer"
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Ledger{store: s, events: pub, log: log.With("component", "ledger"), cfg: cfg}
}

type OrderItemInput struct {
	MenuID uint
	Qty    int
	Note   *string
}

type CreateOrderInput struct {
	CustomerName string
	Note         *string
	Items        []OrderItemInput
}

func validateCreateOrder(in CreateOrderInput) error {
	if len(in.Items) == 0 {
		return apperr.Validation("items is required")
	}
	for i, it := range in.Items {
		if it.MenuID == 0 {
			return apperr.Validation("items[%d].menuId is required", i)
		}
		if it.Qty < 1 {
			return apperr.Validation("items[%d].qty must be at least 1", i)
		}
	}
	return nil
}

func distinctMenuIDs(items []OrderItemInput) []uint {
	seen := make(map[uint]bool, len(items))
	var ids []uint
	for _, it := range items {
		if !seen[it.MenuID] {
			seen[it.MenuID] = true
			ids = append(ids, it.MenuID)
		}
	}
	return ids
}

// CreateOrder validates the cart, snapshots menu names and prices onto the
// items and stores the order under the next code of the day. The count of
// today's orders and the insert share one transaction; if another order
// took the code first, the whole transaction is retried.
func (l *Ledger) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validateCreateOrder(in); err != nil {
		return nil, err
	}
	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" {
		customer = l.cfg.WalkInName
	}
	ids := distinctMenuIDs(in.Items)

	var created *models.Order
	err := retryOnConflict(ctx, l.cfg.CodeAttempts, l.cfg.CodeBackoff, func(attempt int) error {
		return l.store.InTx(ctx, func(tx *store.Store) error {
			order, err := l.buildOrder(ctx, tx, customer, in, ids)
			if err != nil {
				return err
			}

			now := l.cfg.Now()
			day := now.In(l.cfg.Location)
			n, err := tx.CountOrdersWithCodePrefix(ctx, models.OrderCodeDayPrefix(day))
			if err != nil {
				return err
			}
			order.Code = models.FormatOrderCode(day, n+1)
			order.CreatedAt = now.UTC()
			order.UpdatedAt = now.UTC()

			if err := tx.CreateOrder(ctx, order); err != nil {
				if store.IsUniqueViolation(err) {
					l.log.Debug("order code taken, retrying", "code", order.Code, "attempt", attempt)
				}
				return err
			}
			created = order
			return nil
		})
	})
	if store.IsUniqueViolation(err) {
		l.log.Warn("order code allocation exhausted", "attempts", l.cfg.CodeAttempts, "error", err)
		return nil, &apperr.Error{
			Kind:    apperr.KindConflict,
			Message: "could not allocate an order code, please retry",
			Cause:   err,
		}
	}
	if err != nil {
		return nil, err
	}

	l.log.Info("order created", "order_id", created.ID, "code", created.Code, "total", created.Total.String())
	publish(ctx, l.events, l.log, events.FromOrder(events.OrderCreated, created, l.cfg.Now()))

	return l.store.GetOrder(ctx, created.ID)
}

// buildOrder resolves the referenced menus and prices the cart. Nothing is
// written.
func (l *Ledger) buildOrder(ctx context.Context, tx *store.Store, customer string, in CreateOrderInput, ids []uint) (*models.Order, error) {
	menus, err := tx.FindMenusByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}
	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			return nil, apperr.Reference("menu %d does not exist", id)
		}
		if !m.Orderable() {
			return nil, apperr.Validation("menu %q is not available", m.Name)
		}
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for _, req := range in.Items {
		m := byID[req.MenuID]
		item := models.OrderItem{
			MenuID: m.ID,
			Name:   m.Name,
			Qty:    req.Qty,
			Price:  m.Price,
			Note:   trimmedOrNil(req.Note),
		}
		total = total.Add(item.LineTotal())
		items = append(items, item)
	}

	return &models.Order{
		CustomerName: customer,
		Status:       models.StatusUnpaid,
		Total:        total,
		Note:         trimmedOrNil(in.Note),
		Items:        items,
	}, nil
}

// GetOrder loads an order with items and their current menu display fields.
func (l *Ledger) GetOrder(ctx context.Context, ref OrderRef) (*models.Order, error) {
	return findOrder(ctx, l.store, ref)
}

type ListOrdersInput struct {
	Status string // UNPAID, PAID or PENDING; empty lists all
	Limit  int
	Sort   string // asc or desc
}

// ListOrders returns order summaries ordered by creation time.
func (l *Ledger) ListOrders(ctx context.Context, in ListOrdersInput) ([]models.Order, error) {
	f := store.OrderFilter{
		Limit: in.Limit,
		Asc:   strings.EqualFold(strings.TrimSpace(in.Sort), "asc"),
	}
	if f.Limit <= 0 {
		f.Limit = defaultOrderListLimit
	}
	if f.Limit > maxOrderListLimit {
		f.Limit = maxOrderListLimit
	}
	if strings.TrimSpace(in.Status) != "" {
		status, err := models.ParseOrderStatus(in.Status)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		f.Status = status
	}
	return l.store.ListOrders(ctx, f)
}

// UpdateOrderDetails edits the customer name and note. A nil argument
// leaves the field alone; a blank note clears it. Money and status fields
// are only ever written by order creation and payment.
func (l *Ledger) UpdateOrderDetails(ctx context.Context, ref OrderRef, customerName, note *string) (*models.Order, error) {
	var updated *models.Order
	err := l.store.InTx(ctx, func(tx *store.Store) error {
		order, err := findOrder(ctx, tx, ref)
		if err != nil {
			return err
		}
		details := store.OrderDetails{SetNote: note != nil, Note: trimmedOrNil(note)}
		if customerName != nil {
			name := strings.TrimSpace(*customerName)
			if name == "" {
				name = l.cfg.WalkInName
			}
			details.CustomerName = &name
		}
		if err := tx.UpdateOrderDetails(ctx, order.ID, details); err != nil {
			return err
		}
		updated, err = tx.GetOrder(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

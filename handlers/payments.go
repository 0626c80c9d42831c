package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pos-api/models"
	"pos-api/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CashPaymentRequest struct {
	OrderID    json.RawMessage  `json:"orderId"`
	Code       string           `json:"code"`
	AmountPaid *decimal.Decimal `json:"amountPaid" binding:"required,gte=0"`
	Note       *string          `json:"note"`
}

type QRPaymentRequest struct {
	OrderID json.RawMessage `json:"orderId"`
	Code    string          `json:"code"`
	Note    *string         `json:"note"`
}

type PaymentRequest struct {
	OrderID    json.RawMessage  `json:"orderId"`
	Code       string           `json:"code"`
	Method     string           `json:"method" binding:"required"`
	AmountPaid *decimal.Decimal `json:"amountPaid" binding:"omitempty,gte=0"`
	Note       *string          `json:"note"`
}

// PayCash settles an order with cash and records the change
func (h *Handler) PayCash(c *gin.Context) {
	var req CashPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ref, err := paymentOrderRef(req.OrderID, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.payments.PayCash(c.Request.Context(), actor(c), ref, *req.AmountPaid, req.Note)
	h.renderPayment(c, order, err)
}

// PayQR settles an order by QR transfer for the exact total
func (h *Handler) PayQR(c *gin.Context) {
	var req QRPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ref, err := paymentOrderRef(req.OrderID, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.payments.PayQR(c.Request.Context(), actor(c), ref, req.Note)
	h.renderPayment(c, order, err)
}

// Pay is the method-agnostic payment endpoint
func (h *Handler) Pay(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ref, err := paymentOrderRef(req.OrderID, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	order, err := h.payments.Pay(c.Request.Context(), actor(c), services.PayInput{
		Order:      ref,
		Method:     method,
		AmountPaid: req.AmountPaid,
		Note:       req.Note,
	})
	h.renderPayment(c, order, err)
}

func (h *Handler) renderPayment(c *gin.Context, order *models.Order, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.withItemImageURLs(c, order)
	c.JSON(http.StatusOK, order)
}

type PaymentStatus struct {
	OrderID    uint                  `json:"orderId"`
	Code       string                `json:"code"`
	Status     models.OrderStatus    `json:"status"`
	Total      decimal.Decimal       `json:"total"`
	Method     *models.PaymentMethod `json:"method"`
	AmountPaid *decimal.Decimal      `json:"amountPaid"`
	Change     *decimal.Decimal      `json:"change"`
	PaidAt     *time.Time            `json:"paidAt"`
}

// GetPaymentStatus reports whether an order is paid and how
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	ref, err := services.ParseOrderRef(c.Param("idOrCode"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	o, err := h.ledger.GetOrder(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, PaymentStatus{
		OrderID:    o.ID,
		Code:       o.Code,
		Status:     o.Status,
		Total:      o.Total,
		Method:     o.Method,
		AmountPaid: o.AmountPaid,
		Change:     o.Change,
		PaidAt:     o.PaidAt,
	})
}

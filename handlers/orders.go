package handlers

import (
	"net/http"

	"pos-api/services"

	"github.com/gin-gonic/gin"
)

type OrderItemRequest struct {
	MenuID uint    `json:"menuId" binding:"required"`
	Qty    int     `json:"qty" binding:"required,min=1"`
	Note   *string `json:"note"`
}

type CreateOrderRequest struct {
	CustomerName string             `json:"customerName"`
	Note         *string            `json:"note"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CreateOrder opens a new UNPAID order
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	in := services.CreateOrderInput{CustomerName: req.CustomerName, Note: req.Note}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{MenuID: it.MenuID, Qty: it.Qty, Note: it.Note})
	}
	order, err := h.ledger.CreateOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.withItemImageURLs(c, order)
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns order summaries; ?status=UNPAID|PAID&limit=&sort=asc|desc
func (h *Handler) ListOrders(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders, err := h.ledger.ListOrders(c.Request.Context(), services.ListOrdersInput{
		Status: c.Query("status"),
		Limit:  limit,
		Sort:   c.Query("sort"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order with items, by id or code
func (h *Handler) GetOrder(c *gin.Context) {
	ref, err := services.ParseOrderRef(c.Param("idOrCode"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.ledger.GetOrder(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.withItemImageURLs(c, order)
	c.JSON(http.StatusOK, order)
}

type UpdateOrderRequest struct {
	CustomerName *string `json:"customerName"`
	Note         *string `json:"note"`
}

// UpdateOrder edits the customer name and note of an order
func (h *Handler) UpdateOrder(c *gin.Context) {
	ref, err := services.ParseOrderRef(c.Param("idOrCode"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	order, err := h.ledger.UpdateOrderDetails(c.Request.Context(), ref, req.CustomerName, req.Note)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.withItemImageURLs(c, order)
	c.JSON(http.StatusOK, order)
}

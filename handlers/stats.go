package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) StatsOverview(c *gin.Context) {
	ov, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// StatsDaily returns revenue per day; ?days= (default 14)
func (h *Handler) StatsDaily(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		h.respondError(c, err)
		return
	}
	buckets, err := h.stats.Daily(c.Request.Context(), days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// StatsMonthly returns revenue per month; ?months= (default 6)
func (h *Handler) StatsMonthly(c *gin.Context) {
	months, err := queryInt(c, "months")
	if err != nil {
		h.respondError(c, err)
		return
	}
	buckets, err := h.stats.Monthly(c.Request.Context(), months)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

func (h *Handler) StatsPayments(c *gin.Context) {
	totals, err := h.stats.PaymentBreakdown(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// StatsTopDishes ranks dishes by quantity sold; ?limit= (default 5)
func (h *Handler) StatsTopDishes(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.respondError(c, err)
		return
	}
	dishes, err := h.stats.TopDishes(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

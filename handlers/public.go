package handlers

import (
	"context"
	"net/http"
	"time"

	"pos-api/models"
	"pos-api/statemachine"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "Restaurant POS API"
	serviceVersion = "1.0.0"
)

// Health is the liveness probe; it never touches the database
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// APIHealth also checks that the database answers
func (h *Handler) APIHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok", "time": time.Now().UTC()})
}

func (h *Handler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the " + serviceName,
		"docs":    "/api/state-machine",
		"health":  "/health",
		"roles":   models.Roles,
	})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.OrderStatus
	for _, s := range []models.OrderStatus{models.StatusUnpaid, models.StatusPaid} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "Order payment lifecycle",
	})
}

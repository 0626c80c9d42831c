// Package handlers adapts the services to HTTP. Handlers bind and check
// request shapes, call one service operation and render its result; all
// business rules live in services.
package handlers

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"pos-api/apperr"
	"pos-api/middleware"
	"pos-api/models"
	"pos-api/services"
	"pos-api/store"
	"pos-api/uploads"

	"github.com/gin-gonic/gin"
)

// Deps is everything the handlers need; main builds it once.
type Deps struct {
	Store         *store.Store
	Ledger        *services.Ledger
	Payments      *services.Payments
	Catalog       *services.Catalog
	Stats         *services.Stats
	Users         *services.Users
	Uploads       *uploads.Store
	Auth          *middleware.Auth
	Log           *slog.Logger
	PublicBaseURL string
}

type Handler struct {
	store    *store.Store
	ledger   *services.Ledger
	payments *services.Payments
	catalog  *services.Catalog
	stats    *services.Stats
	users    *services.Users
	uploads  *uploads.Store
	auth     *middleware.Auth
	log      *slog.Logger
	baseURL  string
}

func New(d Deps) *Handler {
	registerOnce.Do(registerValidators)
	return &Handler{
		store:    d.Store,
		ledger:   d.Ledger,
		payments: d.Payments,
		catalog:  d.Catalog,
		stats:    d.Stats,
		users:    d.Users,
		uploads:  d.Uploads,
		auth:     d.Auth,
		log:      d.Log,
		baseURL:  strings.TrimRight(d.PublicBaseURL, "/"),
	}
}

// respondError is the single place errors become HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			"request_id", middleware.GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
			"stack", string(debug.Stack()))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": kind.Code(), "message": apperr.ClientMessage(err)})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.respondError(c, apperr.Validation("%s", err.Error()))
}

func actor(c *gin.Context) services.Actor {
	role, _ := middleware.GetRole(c)
	return services.Actor{UserID: middleware.GetUserID(c), Role: role}
}

// publicBase is the origin image URLs are built on: PUBLIC_BASE_URL when
// set, otherwise the request's own scheme and host.
func (h *Handler) publicBase(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}

func (h *Handler) withImageURL(c *gin.Context, m *models.Menu) {
	if m != nil && m.ImageRef != nil {
		m.ImageURL = uploads.URL(*m.ImageRef, h.publicBase(c))
	}
}

func (h *Handler) withItemImageURLs(c *gin.Context, o *models.Order) {
	for i := range o.Items {
		h.withImageURL(c, o.Items[i].Menu)
	}
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// queryInt reads an optional positive integer query parameter; 0 means
// absent.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s must be a non-negative integer", name)
	}
	return n, nil
}

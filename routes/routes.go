package routes

import (
	"pos-api/handlers"
	"pos-api/middleware"
	"pos-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, auth *middleware.Auth, uploadDir string) {
	r.GET("/health", h.Health)
	r.GET("/", h.Welcome)

	// Uploaded images are loaded by the frontend from another origin.
	files := r.Group("/uploads", func(c *gin.Context) {
		c.Header("Cross-Origin-Resource-Policy", "cross-origin")
	})
	files.Static("/", uploadDir)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.GET("/health", h.APIHealth)
		public.GET("/state-machine", h.GetStateMachineInfo)

		// Auth
		public.POST("/auth/signup", h.Signup)
		public.POST("/auth/login", h.Login)

		// Catalog reads
		public.GET("/menus", h.ListMenus)
		public.GET("/menus/:id", h.GetMenu)
		public.GET("/categories", h.ListCategories)
	}

	// ── Staff routes (ADMIN or STAFF) ──────────────────────────────
	staff := r.Group("/api")
	staff.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleAdmin, models.RoleStaff))
	{
		staff.GET("/auth/me", h.Me)

		// Orders
		staff.GET("/orders", h.ListOrders)
		staff.POST("/orders", h.CreateOrder)
		staff.GET("/orders/:idOrCode", h.GetOrder)
		staff.PATCH("/orders/:idOrCode", h.UpdateOrder)

		// Payments
		staff.POST("/payments/cash", h.PayCash)
		staff.POST("/payments/qr", h.PayQR)
		staff.POST("/payments/pay", h.Pay)
		staff.GET("/payments/order/:idOrCode", h.GetPaymentStatus)

		// Catalog management
		staff.POST("/menus", h.CreateMenu)
		staff.PUT("/menus/:id", h.UpdateMenu)
		staff.POST("/categories", h.CreateCategory)
		staff.PUT("/categories/:id", h.UpdateCategory)
		staff.DELETE("/categories/:id", h.DeleteCategory)
		staff.POST("/upload", h.Upload)

		// Reports
		staff.GET("/stats/overview", h.StatsOverview)
		staff.GET("/stats/daily", h.StatsDaily)
		staff.GET("/stats/monthly", h.StatsMonthly)
		staff.GET("/stats/payments", h.StatsPayments)
		staff.GET("/stats/top-dishes", h.StatsTopDishes)

		staff.GET("/users", h.ListUsers)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.POST("/users", h.CreateUser)
		admin.POST("/menus/reset/all", h.ResetMenus)
		admin.POST("/admin/reset-menus", h.ResetMenus)
	}
}

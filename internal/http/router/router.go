package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/config"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/handlers"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/http/middleware"
)

// Handlers набор HTTP хэндлеров приложения.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Profile       *handlers.ProfileHandler
	Property      *handlers.PropertyHandler
	Case          *handlers.CaseHandler
	Job           *handlers.JobHandler
	Cart          *handlers.CartHandler
	Reference     *handlers.ReferenceHandler
	Admin         *handlers.AdminHandler
	Report        *handlers.ReportHandler
	Notification  *handlers.NotificationHandler
	WS            *handlers.WSHandler
	Health        *handlers.HealthHandler
	ServeDocFiles bool
}

// RateLimitStores хранилища счётчиков: общий API и более строгий для /api/auth.
type RateLimitStores struct {
	API  limiter.Store
	Auth limiter.Store
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokens middleware.AccessTokenParser,
	limits RateLimitStores,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	if limits.API != nil {
		api.Use(middleware.RateLimitMiddleware(limits.API, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	}

	authGroup := api.Group("/auth")
	if limits.Auth != nil {
		authGroup.Use(middleware.RateLimitMiddleware(limits.Auth, cfg.AuthRateLimit, cfg.RateLimitPeriod))
	}
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	api.GET("/ws", h.WS.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)

		protected.GET("/notifications", h.Notification.ListNotifications)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllAsRead)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)

		protected.GET("/law-firms", h.Reference.ListLawFirms)
		protected.GET("/law-firms/:id", middleware.UUIDValidator("id"), h.Reference.GetLawFirm)
		protected.GET("/pricing", h.Reference.ListPrices)

		if h.ServeDocFiles {
			protected.GET("/files/*key", h.Job.DownloadFile)
		}
	}

	landlord := protected.Group("/")
	landlord.Use(middleware.RequireRole(valueobject.RoleLandlord, valueobject.RoleAdmin))
	{
		landlord.GET("/properties", h.Property.ListProperties)
		landlord.POST("/properties", h.Property.CreateProperty)
		landlord.GET("/properties/:id", middleware.UUIDValidator("id"), h.Property.GetProperty)
		landlord.PUT("/properties/:id", middleware.UUIDValidator("id"), h.Property.UpdateProperty)
		landlord.DELETE("/properties/:id", middleware.UUIDValidator("id"), h.Property.DeleteProperty)

		landlord.GET("/tenants", h.Property.ListTenants)
		landlord.POST("/tenants", h.Property.CreateTenant)
		landlord.GET("/tenants/:id", middleware.UUIDValidator("id"), h.Property.GetTenant)
		landlord.PUT("/tenants/:id", middleware.UUIDValidator("id"), h.Property.UpdateTenant)
		landlord.DELETE("/tenants/:id", middleware.UUIDValidator("id"), h.Property.DeleteTenant)

		landlord.GET("/cases", h.Case.ListCases)
		landlord.POST("/cases", h.Case.CreateCase)
		landlord.GET("/cases/:id", middleware.UUIDValidator("id"), h.Case.GetCase)
		landlord.PUT("/cases/:id", middleware.UUIDValidator("id"), h.Case.UpdateCase)
		landlord.PATCH("/cases/:id/status", middleware.UUIDValidator("id"), h.Case.UpdateStatus)
		landlord.PATCH("/cases/:id/payment-status", middleware.UUIDValidator("id"), h.Case.UpdatePaymentStatus)
		landlord.DELETE("/cases/:id", middleware.UUIDValidator("id"), h.Case.DeleteCase)
		landlord.GET("/cases/:id/history", middleware.UUIDValidator("id"), h.Case.History)
		landlord.GET("/cases/:id/documents", middleware.UUIDValidator("id"), h.Case.ListDocuments)

		landlord.GET("/cart", h.Cart.GetCart)
		landlord.POST("/checkout", h.Cart.Checkout)
		landlord.GET("/checkout/transactions", h.Cart.ListTransactions)
	}

	jobs := protected.Group("/jobs")
	jobs.Use(middleware.RequireRole(valueobject.RoleContractor, valueobject.RoleAdmin))
	{
		jobs.GET("/available", h.Job.ListAvailable)
		jobs.GET("/mine", h.Job.ListMine)
		jobs.GET("/:id", middleware.UUIDValidator("id"), h.Job.GetJob)
		jobs.POST("/:id/claim", middleware.UUIDValidator("id"), h.Job.Claim)
		jobs.POST("/:id/unclaim", middleware.UUIDValidator("id"), h.Job.Unclaim)
		jobs.PATCH("/:id/status", middleware.UUIDValidator("id"), h.Job.UpdateStatus)
		jobs.GET("/:id/documents", middleware.UUIDValidator("id"), h.Job.ListDocuments)
		jobs.POST("/:id/documents", middleware.UUIDValidator("id"), h.Job.UploadDocument)
		jobs.DELETE("/:id/documents/:type", middleware.UUIDValidator("id"), h.Job.DeleteDocument)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(valueobject.RoleAdmin))
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.PATCH("/users/:id/role", middleware.UUIDValidator("id"), h.Admin.UpdateRole)
		admin.PATCH("/users/:id/active", middleware.UUIDValidator("id"), h.Admin.SetActive)
		admin.GET("/analytics", h.Admin.Analytics)

		admin.GET("/notifications", h.Admin.ListNotifications)
		admin.POST("/notifications/:id/retry", middleware.UUIDValidator("id"), h.Admin.RetryNotification)

		admin.POST("/law-firms", h.Reference.CreateLawFirm)
		admin.PUT("/law-firms/:id", middleware.UUIDValidator("id"), h.Reference.UpdateLawFirm)
		admin.DELETE("/law-firms/:id", middleware.UUIDValidator("id"), h.Reference.DeleteLawFirm)
		admin.PUT("/pricing/:case_type", h.Reference.SetPrice)

		admin.GET("/reports/cases.pdf", h.Report.CasesReport)
	}

	return r
}

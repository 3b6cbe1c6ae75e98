package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/salonworks/booking-api/internal/audit"
	"github.com/salonworks/booking-api/internal/cache"
	"github.com/salonworks/booking-api/internal/config"
	"github.com/salonworks/booking-api/internal/handlers"
	infraRepo "github.com/salonworks/booking-api/internal/infra/repository"
	"github.com/salonworks/booking-api/internal/middleware"
	"github.com/salonworks/booking-api/internal/models"
	"github.com/salonworks/booking-api/internal/storage"
	ucOrder "github.com/salonworks/booking-api/internal/usecase/order"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	orderRepo := infraRepo.NewOrderGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}
	couponCache := cache.NewCouponCache(redisClient)

	avatarStore := storage.NewAvatarStore(cfg)

	// ======================================================
	// ORDER USE CASES
	// ======================================================
	createOrderUC := ucOrder.NewCreateOrder(orderRepo, auditDispatcher)
	fromAppointmentUC := ucOrder.NewCreateFromAppointment(createOrderUC, orderRepo)
	applyCouponUC := ucOrder.NewApplyCoupon(orderRepo, auditDispatcher)
	removeCouponUC := ucOrder.NewRemoveCoupon(orderRepo, auditDispatcher)
	updateOrderStatusUC := ucOrder.NewUpdateStatus(orderRepo, auditDispatcher)
	deleteOrderUC := ucOrder.NewDeleteOrder(orderRepo, auditDispatcher)
	manageDetailsUC := ucOrder.NewManageDetails(orderRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	userHandler := handlers.NewUserHandler(db, cfg, avatarStore, auditDispatcher)
	productHandler := handlers.NewProductHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, auditDispatcher)
	couponHandler := handlers.NewCouponHandler(db, couponCache)
	scheduleHandler := handlers.NewScheduleHandler(db)
	storeHandler := handlers.NewStoreHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	orderHandler := handlers.NewOrderHandler(
		orderRepo,
		createOrderUC,
		fromAppointmentUC,
		applyCouponUC,
		removeCouponUC,
		updateOrderStatusUC,
		deleteOrderUC,
		manageDetailsUC,
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/users/signup", userHandler.Signup)
		api.POST("/users/login", userHandler.Login)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))

		adminOnly := middleware.RequireRoles(models.RoleAdmin)
		staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleStylist)

		// ------------------------------
		// USERS
		// ------------------------------
		users := secured.Group("/users")
		{
			users.GET("/me", userHandler.Me)
			users.PATCH("/me", userHandler.UpdateMe)
			users.DELETE("/me", userHandler.DeleteMe)
			users.PUT("/me/password", userHandler.ChangePassword)
			users.POST("/me/image", userHandler.UploadImage)

			users.GET("", adminOnly, userHandler.List)
			users.POST("", adminOnly, userHandler.AdminCreate)
			users.GET("/role/:role", adminOnly, userHandler.ListByRole)
			users.GET("/status/:status", adminOnly, userHandler.ListByStatus)

			users.GET("/:id", adminOnly, userHandler.Get)
			users.PATCH("/:id", adminOnly, userHandler.Update)
			users.DELETE("/:id", adminOnly, userHandler.Delete)
			users.PUT("/:id/role", adminOnly, userHandler.SetRole)
			users.PUT("/:id/status", adminOnly, userHandler.SetStatus)
			users.POST("/:id/activate", adminOnly, userHandler.Activate)
			users.POST("/:id/deactivate", adminOnly, userHandler.Deactivate)
		}

		// ------------------------------
		// PRODUCTS
		// ------------------------------
		products := secured.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/services", productHandler.ListServices)
			products.GET("/goods", productHandler.ListGoods)
			products.GET("/search", productHandler.Search)
			products.GET("/low-stock", adminOnly, productHandler.LowStock)
			products.GET("/:id", productHandler.Get)

			products.POST("", adminOnly, productHandler.Create)
			products.PATCH("/:id", adminOnly, productHandler.Update)
			products.DELETE("/:id", adminOnly, productHandler.Delete)
			products.PATCH("/:id/stock", adminOnly, productHandler.AdjustStock)
			products.PUT("/:id/price", adminOnly, productHandler.SetPrice)
			products.PUT("/:id/status", adminOnly, productHandler.SetStatus)
		}

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		appointments := secured.Group("/appointments")
		{
			appointments.GET("", appointmentHandler.List)
			appointments.POST("", appointmentHandler.Create)
			appointments.GET("/:id", appointmentHandler.Get)
			appointments.PATCH("/:id", appointmentHandler.Update)
			appointments.DELETE("/:id", staffOnly, appointmentHandler.Delete)
			appointments.PATCH("/:id/status", appointmentHandler.SetStatus)

			appointments.GET("/:id/services", appointmentHandler.ListServices)
			appointments.POST("/:id/services", appointmentHandler.AttachService)
			appointments.POST("/:id/services/bulk", appointmentHandler.BulkAttach)
			appointments.DELETE("/:id/services", appointmentHandler.ClearServices)
			appointments.DELETE("/:id/services/:serviceID", appointmentHandler.DetachService)

			appointments.GET("/:id/calculation", appointmentHandler.Calculation)
		}

		// ------------------------------
		// ORDERS
		// ------------------------------
		orders := secured.Group("/orders")
		{
			orders.GET("", orderHandler.List)
			orders.POST("", orderHandler.Create)
			orders.POST("/from-appointment", orderHandler.CreateFromAppointment)
			orders.GET("/statistics", adminOnly, orderHandler.Statistics)

			orders.GET("/:id", orderHandler.Get)
			orders.PATCH("/:id", orderHandler.Update)
			orders.DELETE("/:id", adminOnly, orderHandler.Delete)
			orders.PATCH("/:id/status", orderHandler.SetStatus)

			orders.POST("/:id/apply-coupon", orderHandler.ApplyCoupon)
			orders.DELETE("/:id/coupon", orderHandler.RemoveCoupon)
			orders.GET("/:id/calculation", orderHandler.Calculation)

			orders.GET("/:id/details", orderHandler.ListDetails)
			orders.POST("/:id/details", orderHandler.AddDetail)
			orders.GET("/:id/details/:detailID", orderHandler.GetDetail)
			orders.PATCH("/:id/details/:detailID", orderHandler.UpdateDetail)
			orders.DELETE("/:id/details/:detailID", orderHandler.DeleteDetail)
		}

		// ------------------------------
		// COUPONS
		// ------------------------------
		coupons := secured.Group("/coupons")
		{
			coupons.POST("/validate", couponHandler.Validate)
			coupons.GET("/available", couponHandler.Available)
			coupons.GET("/code/:code", couponHandler.GetByCode)

			coupons.GET("", adminOnly, couponHandler.List)
			coupons.POST("", adminOnly, couponHandler.Create)
			coupons.POST("/bulk", adminOnly, couponHandler.Bulk)
			coupons.GET("/expiring", adminOnly, couponHandler.Expiring)
			coupons.POST("/cleanup", adminOnly, couponHandler.Cleanup)
			coupons.GET("/statistics", adminOnly, couponHandler.Statistics)

			coupons.GET("/:id", adminOnly, couponHandler.Get)
			coupons.PATCH("/:id", adminOnly, couponHandler.Update)
			coupons.DELETE("/:id", adminOnly, couponHandler.Delete)
			coupons.PUT("/:id/status", adminOnly, couponHandler.SetStatus)
			coupons.POST("/:id/duplicate", adminOnly, couponHandler.Duplicate)
		}

		// ------------------------------
		// SCHEDULES
		// ------------------------------
		schedules := secured.Group("/schedules")
		{
			schedules.GET("", adminOnly, scheduleHandler.ListAll)
			schedules.GET("/conflicts", scheduleHandler.Conflicts)

			schedules.GET("/stylists/:stylistID", scheduleHandler.GetForStylist)
			schedules.PUT("/stylists/:stylistID", staffOnly, scheduleHandler.UpsertDay)
			schedules.DELETE("/stylists/:stylistID/days/:day", staffOnly, scheduleHandler.DeleteDay)
			schedules.GET("/stylists/:stylistID/availability", scheduleHandler.Availability)

			schedules.POST("/time-off", staffOnly, scheduleHandler.CreateTimeOff)
			schedules.GET("/time-off", staffOnly, scheduleHandler.ListTimeOff)
			schedules.PATCH("/time-off/:id", staffOnly, scheduleHandler.UpdateTimeOff)
			schedules.DELETE("/time-off/:id", staffOnly, scheduleHandler.DeleteTimeOff)
			schedules.PUT("/time-off/:id/status", adminOnly, scheduleHandler.SetTimeOffStatus)
		}

		// ------------------------------
		// STORE
		// ------------------------------
		store := secured.Group("/store")
		{
			store.GET("/business-hours", storeHandler.GetBusinessHours)
			store.PUT("/business-hours", adminOnly, storeHandler.ReplaceBusinessHours)
			store.GET("/business-hours/:day", storeHandler.GetBusinessHoursDay)
			store.PATCH("/business-hours/:day", adminOnly, storeHandler.PatchBusinessHoursDay)

			store.GET("/closures", storeHandler.ListClosures)
			store.POST("/closures", adminOnly, storeHandler.CreateClosure)
			store.DELETE("/closures/:id", adminOnly, storeHandler.DeleteClosure)

			store.GET("/status", storeHandler.Status)
			store.GET("/is-open", storeHandler.IsOpen)
			store.GET("/next-open", storeHandler.NextOpen)
		}

		// ------------------------------
		// AUDIT
		// ------------------------------
		secured.GET("/audit-logs", adminOnly, auditLogsHandler.List)
	}
}

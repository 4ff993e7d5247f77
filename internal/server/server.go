package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/jkfest/jkfest-api/config"
	"github.com/jkfest/jkfest-api/internal/cache"
	"github.com/jkfest/jkfest-api/internal/handlers"
	"github.com/jkfest/jkfest-api/internal/middleware"
	"github.com/jkfest/jkfest-api/internal/ticketing"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	rdb := config.InitRedis(cfg)

	xenditCfg, err := config.LoadXenditConfig()
	if err != nil {
		return fmt.Errorf("failed to load xendit config: %v", err)
	}
	xenditClient, err := config.InitXenditClient(xenditCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize xendit client: %v", err)
	}

	ticketingService := ticketing.NewService(ticketing.NewGormStore(db))
	appCache := cache.New(rdb)

	r := gin.Default()

	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.TicketingMiddleware(ticketingService))
	r.Use(middleware.CacheMiddleware(appCache))
	r.Use(middleware.XenditMiddleware(xenditClient))

	setupRoutes(r, cfg, rdb, appCache, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, cfg *config.Config, rdb *redis.Client, appCache *cache.Cache, db *gorm.DB) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		if err := appCache.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(503, gin.H{"status": "unhealthy", "error": "database unreachable"})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		public.GET("/ticket-types", handlers.ListTicketTypes)
		public.GET("/ticket-types/:id", handlers.GetTicketType)
		public.GET("/lineup", handlers.ListLineup)

		public.GET("/orders/:id", handlers.GetOrder)
		public.GET("/tickets/:code/qr", handlers.TicketQR)

		public.POST("/payments/checkout", handlers.CreateCheckout)
		public.POST("/payments/webhook", handlers.PaymentWebhook)

		if cfg.Environment == "development" {
			public.POST("/payments/simulate", handlers.SimulatePayment)
		}
	}

	gate := r.Group("/v1/scan")
	gate.Use(middleware.JWTAuthMiddleware())
	gate.Use(middleware.RequireRole("staff", "admin"))
	gate.Use(middleware.ScanRateLimit(rdb, cfg.ScanRateLimit))
	{
		gate.POST("/lookup", handlers.LookupTicket)
		gate.POST("/redeem", handlers.RedeemTicket)
	}

	admin := r.Group("/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware())
	admin.Use(middleware.RequireRole("admin"))
	{
		admin.POST("/ticket-types", handlers.CreateTicketType)
		admin.PUT("/ticket-types/:id", handlers.UpdateTicketType)
		admin.DELETE("/ticket-types/:id", handlers.DeleteTicketType)

		admin.POST("/lineup", handlers.CreateLineupSlot)
		admin.PUT("/lineup/:id", handlers.UpdateLineupSlot)
		admin.DELETE("/lineup/:id", handlers.DeleteLineupSlot)

		admin.GET("/orders", handlers.ListOrders)
		admin.POST("/tickets/:id/revoke", handlers.RevokeTicket)
		admin.GET("/stats", handlers.AdminStats)
	}
}

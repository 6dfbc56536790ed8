package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"comanda-system/config"
	"comanda-system/internal/database"
	"comanda-system/internal/events"
	"comanda-system/internal/server/handlers"
	"comanda-system/internal/server/middleware"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	publisher := events.NewPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic)
	defer publisher.Close()

	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	authHandler := handlers.NewAuthHandler(db, tokenTTL)
	catalogHandler := handlers.NewCatalogHandler(db, redisClient)
	promotionHandler := handlers.NewPromotionHandler(db, redisClient)
	orderHandler := handlers.NewOrderHandler(db, publisher)
	tableHandler := handlers.NewTableHandler(db, redisClient)
	cashHandler := handlers.NewCashHandler(db, publisher)
	inventoryHandler := handlers.NewInventoryHandler(db)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		catalog := protected.Group("/catalog")
		{
			catalog.GET("/categories", catalogHandler.ListCategories)
			catalog.POST("/categories", catalogHandler.CreateCategory)
			catalog.PUT("/categories/:id", catalogHandler.UpdateCategory)
			catalog.DELETE("/categories/:id", catalogHandler.DeleteCategory)

			catalog.GET("/products", catalogHandler.ListProducts)
			catalog.POST("/products", catalogHandler.CreateProduct)
			catalog.GET("/products/:id", catalogHandler.GetProduct)
			catalog.PUT("/products/:id", catalogHandler.UpdateProduct)
			catalog.DELETE("/products/:id", catalogHandler.DeleteProduct)
		}

		promotions := protected.Group("/promotions")
		{
			promotions.GET("", promotionHandler.ListPromotions)
			promotions.POST("", promotionHandler.CreatePromotion)
			promotions.PUT("/:id", promotionHandler.UpdatePromotion)
			promotions.DELETE("/:id", promotionHandler.DeletePromotion)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("/quote", orderHandler.QuoteOrder)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/kitchen", orderHandler.ListKitchenOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		}

		layout := protected.Group("/layout")
		{
			layout.GET("/zones", tableHandler.GetLayout)
			layout.POST("/zones", tableHandler.CreateZone)
			layout.PUT("/zones/:id", tableHandler.UpdateZone)
			layout.DELETE("/zones/:id", tableHandler.DeleteZone)
			layout.POST("/zones/:id/tables", tableHandler.CreateTable)
			layout.PUT("/zones/:id/tables/:tableId", tableHandler.UpdateTable)
			layout.DELETE("/zones/:id/tables/:tableId", tableHandler.DeleteTable)
		}

		cash := protected.Group("/cash")
		{
			cash.GET("/register", cashHandler.GetRegisterStatus)
			cash.POST("/register/open", cashHandler.OpenRegister)
			cash.POST("/register/close", cashHandler.CloseRegister)
			cash.GET("/movements", cashHandler.ListMovements)
			cash.POST("/movements", cashHandler.AddMovement)
			cash.GET("/reports", cashHandler.ListShiftReports)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.GET("/ingredients", inventoryHandler.ListIngredients)
			inventory.POST("/ingredients", inventoryHandler.CreateIngredient)
			inventory.PUT("/ingredients/:id", inventoryHandler.UpdateIngredient)
			inventory.DELETE("/ingredients/:id", inventoryHandler.DeleteIngredient)
			inventory.POST("/ingredients/:id/restock", inventoryHandler.Restock)
			inventory.POST("/ingredients/:id/waste", inventoryHandler.RecordWaste)
			inventory.GET("/low-stock", inventoryHandler.ListLowStock)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

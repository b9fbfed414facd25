// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/config"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/cart"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/checkout"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/discount"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/domain/pricing"
	storage "github.com/Ahmedelshkhwy/pharmacy-cart/internal/infrastructure/storage/redis"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/infrastructure/upstream"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/interfaces/http/handlers"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/interfaces/http/middleware"
)

// SetupRoutes wires the domain services and mounts every route group
func SetupRoutes(rg *gin.RouterGroup, cfg *config.Config, redisClient *redis.Client, backend *upstream.Client, log *logrus.Logger) {
	snapshots := storage.NewSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
	coordinator := cart.NewCoordinator(backend, snapshots, log)
	discounts := discount.NewCatalog()
	engine := pricing.NewEngine()
	checkoutService := checkout.NewService(coordinator, engine, discounts, backend, snapshots, log)

	cartHandler := handlers.NewCartHandler(coordinator)
	productHandler := handlers.NewProductHandler(backend, discounts, engine)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)

	// Cart routes work for guest sessions and authenticated users alike;
	// only authenticated sessions sync with the backend cart.
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.GET("/count", cartHandler.GetCartCount)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.POST("/refresh", cartHandler.RefreshCart)
	}

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}

	rg.GET("/discounts", productHandler.GetDiscounts)

	// Checkout and order history require a logged-in customer
	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.AuthMiddleware(cfg))
	{
		checkoutGroup.POST("", checkoutHandler.Checkout)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", checkoutHandler.ListOrders)
		orders.PUT("/:id/cancel", checkoutHandler.CancelOrder)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/cart"
	orderControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/order"
	productControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/product"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/middleware"
	"gorm.io/gorm"
)

// SetupCatalogRoutes registers the public, read-only catalog endpoints.
func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))
}

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetUserCart(db))                  // GET /user/cart
			cartGroup.POST("/", cartControllers.AddCartItem(db))                 // POST /user/cart
			cartGroup.PUT("/", cartControllers.UpdateCartItem(db))               // PUT /user/cart
			cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(db)) // DELETE /user/cart/:product_id
			cartGroup.DELETE("/", cartControllers.ClearUserCart(db))             // DELETE /user/cart
		}

		// ──────────────── Checkout & Own Orders ────────────────
		userGroup.POST("/orders", orderControllers.CheckoutHandler(db))    // POST /user/orders
		userGroup.GET("/orders", orderControllers.GetUserOrdersHandler(db)) // GET /user/orders
	}
}

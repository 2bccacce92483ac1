package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/order"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/middleware"
	"gorm.io/gorm"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		// Update order status. The state machine itself decides whether the
		// actor may perform the transition, so customers can cancel their own
		// pending orders through the same endpoint.
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))

		staff := orders.Group("")
		staff.Use(middleware.RequireStaff)
		{
			// Fetch all orders (kitchen / counter views, optional ?status=)
			staff.GET("/", orderControllers.GetAllOrdersHandler(db))

			// Point-of-sale order creation, no pre-existing cart
			staff.POST("/direct", orderControllers.DirectOrderHandler(db))

			// Fetch a single order by id or order_ref
			staff.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))

			// Full status audit trail for an order
			staff.GET("/:orderID/history", orderControllers.GetOrderHistoryHandler(db))
		}
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/order"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/middleware"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		// ─────────── Order Reporting ───────────
		adminGroup.GET("/orders", orderControllers.GetAllOrdersHandler(db))
		adminGroup.GET("/orders/export-excel", orderControllers.ExportOrdersToExcel(db))
	}
}

package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up the public, user, staff
// and admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public catalog routes (no middleware)
	SetupCatalogRoutes(r, db)

	// User routes (JWT-protected)
	SetupUserRoutes(r, db)

	// Order routes (JWT-protected, staff routes additionally role-checked)
	SetupOrderRoutes(r, db)

	// Admin routes (API-Key-protected)
	SetupAdminRoutes(r, db)
}

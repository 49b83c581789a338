package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Public product browsing
	SetupProductRoutes(r, db)

	// User routes (JWT-protected)
	SetupUserRoutes(r, db)

	// Order + payment routes
	SetupOrderRoutes(r, db)
	SetupPaymentRoutes(r, db)

	// Admin routes (JWT + admin role)
	SetupAdminRoutes(r, db)
}

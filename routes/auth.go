package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/natrenakres/prostore/auth"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", auth.SignUp(db))
		authGroup.POST("/signin", auth.SignIn(db))
		authGroup.POST("/guest", auth.CreateGuestSession())
	}
}

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// POST /auth/guest
// Issues a short-lived token for an anonymous session so a visitor can build
// a cart before signing up. The guest id becomes the cart owner id.
func CreateGuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := "guest_" + generateRandomString(16)

		token, err := issueToken(guestID, "guest", 24*time.Hour)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Guest session created",
			"data":    gin.H{"guest_id": guestID, "token": token},
		})
	}
}

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_guest"
	}
	return hex.EncodeToString(bytes)
}

package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken checks the bearer token issued by the identity service and
// places the user_id and role claims in the request context.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
		c.Abort()
		return
	}
	// Standard clients send "Bearer <token>"; accept the bare token too.
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
		c.Abort()
		return
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is missing user_id claim"})
		c.Abort()
		return
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = "customer"
	}

	c.Set("user_id", userID)
	c.Set("role", role)

	c.Next()
}

// RequireStaff allows only staff and admin tokens through. Must run after
// ValidateToken.
func RequireStaff(c *gin.Context) {
	role := c.GetString("role")
	if role != "staff" && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
		c.Abort()
		return
	}
	c.Next()
}

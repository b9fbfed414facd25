// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/config"
	"github.com/Ahmedelshkhwy/pharmacy-cart/internal/pkg/auth"
)

// AuthMiddleware creates JWT authentication middleware for endpoints that
// require a logged-in customer
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// Extract token from header
		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Validate access token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store user information in context
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("token", tokenString)

		c.Next()
	}
}

// OptionalAuthMiddleware provides optional authentication. Cart endpoints
// work for guests; a valid token upgrades the request to an auth session so
// cart mutations sync with the backend.
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// No auth header, continue without authentication
			c.Next()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			// Invalid header format, continue without authentication
			c.Next()
			return
		}

		// Try to validate token
		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			// Invalid token, continue without authentication
			c.Next()
			return
		}

		// Store user information in context if token is valid
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("token", tokenString)

		c.Next()
	}
}

// GetSession builds the caller's session from the request context. Guests get
// a cookie-backed session id so their local cart survives across requests.
func GetSession(c *gin.Context) auth.Session {
	sess := auth.Session{}

	if userID, ok := c.Get("user_id"); ok {
		sess.UserID = userID.(string)
	}
	if token, ok := c.Get("token"); ok {
		sess.Token = token.(string)
	}
	if sess.UserID != "" {
		return sess
	}

	sess.SessionID = getOrCreateSessionID(c)
	return sess
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		// Generate new session ID
		sessionID = uuid.New().String()

		// Set session cookie (24 hours)
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}

	return sessionID
}

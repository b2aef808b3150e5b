package mockapi

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ctxUser  = "user"
	ctxToken = "rawToken"
)

func AuthMiddleware(store *Store, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			ErrorResponse(c, http.StatusUnauthorized, "Full authentication is required to access this resource")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			log.Warnf("Middleware: Invalid Authorization header format")
			ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header")
			return
		}

		user, ok := store.UserForToken(parts[1])
		if !ok {
			log.Warn("Middleware: Unknown or revoked token")
			ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxToken, parts[1])
		c.Set(ctxUser, user)
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not role.
func RequireRole(role domain.Role, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != role {
			log.Warnf("Middleware: user %d lacks role %s", currentUser(c).ID, role)
			ErrorResponse(c, http.StatusForbidden, "Access Denied")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	u, _ := c.Get(ctxUser)
	user, _ := u.(domain.User)
	return user
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		statusCode := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			entry = entry.WithField("request_id", reqID)
		}

		switch {
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

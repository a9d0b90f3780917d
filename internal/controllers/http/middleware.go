package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sales-order-service/internal/domain"
	"sales-order-service/internal/infra/remote"
	"sales-order-service/internal/notice"
	"sales-order-service/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	actorKey   = "actor"
	sessionKey = "session"
	noticesKey = "notices"

	NoticeHeader = "X-Notice"
)

func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", NoticeHeader+", Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestLogger logs one line per request through slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}

// NoticeMiddleware gives every request a notice collector.
func NoticeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, col := notice.With(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Set(noticesKey, col)
		c.Next()
	}
}

// AuthMiddleware resolves the bearer token to a session and stores the
// actor on the gin context.
func AuthMiddleware(authSvc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authorization header required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token format (must be Bearer)"})
			return
		}

		sess, err := authSvc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, sess.Actor)
		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(remote.WithBearer(c.Request.Context(), sess.Token))
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	v, _ := c.Get(actorKey)
	a, _ := v.(domain.Actor)
	return a
}

func sessionFrom(c *gin.Context) *domain.Session {
	v, _ := c.Get(sessionKey)
	s, _ := v.(*domain.Session)
	return s
}

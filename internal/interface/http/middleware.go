package httpadapter

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hijjiri/todo-api/internal/logging"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// 受け取った request id がこれより長ければ捨てて採番し直す
const maxRequestIDLen = 128

// RequestID は X-Request-ID を引き継ぐ（無ければ uuid を採番）。
// レスポンスヘッダにも同じ値を返す。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// Logger はリクエストごとに 1 行のアクセスログを出す
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := append(logging.Fields(c.Request.Context()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

// Recovery は handler の panic を 500 に変換する
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered in http handler",
					append(logging.Fields(c.Request.Context()),
						zap.Any("panic", r),
						zap.String("path", c.Request.URL.Path),
						zap.ByteString("stacktrace", debug.Stack()),
					)...)
				respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error", nil)
			}
		}()

		c.Next()
	}
}

// Timeout は request context に deadline を付ける。
// - timeout <= 0 の場合は何もしない
// - 既に deadline がある場合は短い方が効く（context.WithTimeout の仕様どおり）
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CORS は許可オリジンを 1 つだけ持つ。"*" なら全許可。
func CORS(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowOrigin == "*":
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && origin == allowOrigin:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+HeaderRequestID)
		c.Header("Access-Control-Expose-Headers", "Location, "+HeaderRequestID)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

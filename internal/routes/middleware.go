package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-mongo-todo/internal/logging"
)

// RequestIDHeader はリクエストIDをやり取りするヘッダー名です。
const RequestIDHeader = "X-Request-ID"

// RequestID はリクエストごとにIDを割り当て、レスポンスヘッダーにも設定するミドルウェアです。
// クライアントが送ってきたIDはUUIDとして解釈できる場合だけ使い、それ以外は新しく発行します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		if parsed, err := uuid.Parse(c.GetHeader(RequestIDHeader)); err == nil {
			id = parsed.String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger はリクエストIDを含むロガーをcontextに設定し、処理結果をログに出力するミドルウェアです。
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := logger.With(slog.String("request_id", c.GetString("request_id")))
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		reqLogger.Log(c.Request.Context(), level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

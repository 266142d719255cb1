package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// HeaderRequestID はリクエストIDを運ぶヘッダー。
const HeaderRequestID = "X-Request-ID"

// RequestLogger はリクエストごとにIDを割り当ててアクセスログを出力するGinミドルウェアを返す。
// IDはコンテキスト経由でバックエンドAPIの呼び出しにも引き継がれる。
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(httpclient.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			logger.Error("リクエスト処理中にエラーが発生しました",
				append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		logger.Info("リクエスト", fields...)
	}
}

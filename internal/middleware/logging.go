// Package middleware 는 Gin 프레임워크용 미들웨어를 담는다.
package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/black940514/chatbot-project/pkg/log"
)

// bodyLogWriter 는 응답 본문을 캡처한다
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 는 응답을 gin.ResponseWriter 와 내부 버퍼에 함께 쓴다
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger 는 요청과 응답을 상세히 기록하는 Gin 미들웨어다.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 요청 본문을 읽고 다시 채워 후속 핸들러가 정상적으로 읽게 한다
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		latency := time.Since(startTime)
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", string(requestBody),
			"responseBody", blw.body.String(),
		)
	}
}

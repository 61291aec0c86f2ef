package logger

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CorrelationIDHeader is echoed back on every response so clients can
// reference a request in logs.
const CorrelationIDHeader = "X-Correlation-ID"

const correlationContextKey = "goalbumsCorrelationID"

// Init builds the process-wide zap logger. Level comes from LOG_LEVEL
// (debug, info, warn, error), defaulting to info.
func Init() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level, ok := os.LookupEnv("LOG_LEVEL"); ok {
		parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	return cfg.Build()
}

// Middleware assigns a correlation ID to each request, reusing the inbound
// header when a client already supplied one.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationContextKey, id)
		c.Writer.Header().Set(CorrelationIDHeader, id)
		c.Next()
	}
}

// CorrelationID returns the identifier assigned by Middleware, or "".
func CorrelationID(c *gin.Context) string {
	value, exists := c.Get(correlationContextKey)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}

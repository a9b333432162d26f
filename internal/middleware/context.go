package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

const defaultRequestTimeout = 30 * time.Second

// ContextMiddleware attaches request metadata (request id, client ip,
// user agent, timing) to the request context so every downstream log
// line carries it.
func ContextMiddleware(module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		function := c.Request.URL.Path
		ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), module, function)

		ctx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		logger.InfoWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}

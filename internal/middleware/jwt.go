package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/service"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

// JWTMiddleware guards routes with the stateless access token. Only
// the signature and expiry are checked here; revocation is enforced at
// the refresh boundary, which is why access tokens stay short-lived.
type JWTMiddleware struct {
	tokens *service.TokenService
}

func NewJWTMiddleware(tokens *service.TokenService) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens}
}

func abortUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
	c.Abort()
}

// RequireAuth validates the Bearer token and stores the identity in
// both the gin context and the request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			logger.GetLogger().Warn("Missing Authorization header",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortUnauthorized(c)
			return
		}

		claims, err := m.tokens.VerifyAccessToken(tokenParts[1])
		if err != nil {
			logger.GetLogger().Warn("Access token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			abortUnauthorized(c)
			return
		}

		c.Set(string(constants.CtxKeyUserID), claims.UserID)
		c.Set(string(constants.CtxKeyUserEmail), claims.Email)
		c.Set(string(constants.CtxKeyUserRole), claims.Role)

		ctx := ctxutil.WithUserID(c.Request.Context(), claims.UserID)
		ctx = ctxutil.WithValue(ctx, constants.CtxKeyUserEmail, claims.Email)
		ctx = ctxutil.WithValue(ctx, constants.CtxKeyUserRole, claims.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole allows only the listed roles past. Must run after
// RequireAuth.
func (m *JWTMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(constants.CtxKeyUserRole))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		logger.GetLogger().Warn("Role check failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("role", role))
		c.JSON(http.StatusForbidden, constants.BuildErrorResponse("insufficient permissions", nil))
		c.Abort()
	}
}

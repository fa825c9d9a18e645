package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zappy/internal/shared/security"
	"zappy/internal/shared/transport"
)

const ClaimsKey = "claims"

// Auth 校验 Authorization: Bearer <jwt>，并要求角色属于 roles 之一。
// enabled=false 时直接放行（本地开发）。
func Auth(enabled bool, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			transport.SetErrorReason(c.Request.Context(), "missing bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, transport.Body{Code: transport.Unauthorized, Msg: "missing bearer token"})
			return
		}
		claims, err := security.RequireRole(strings.TrimSpace(token), roles...)
		switch {
		case errors.Is(err, security.ErrForbiddenRole):
			transport.SetErrorReason(c.Request.Context(), err.Error())
			c.AbortWithStatusJSON(http.StatusForbidden, transport.Body{Code: transport.Forbidden, Msg: err.Error()})
			return
		case err != nil:
			transport.SetErrorReason(c.Request.Context(), err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, transport.Body{Code: transport.Unauthorized, Msg: "invalid token"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

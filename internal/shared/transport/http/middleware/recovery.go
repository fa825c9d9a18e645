package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"zappy/internal/shared/transport"
	"zappy/modules/kit/logx"
)

// Recovery 把 panic 转成 500 响应并记录日志。
func Recovery(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithContext(c.Request.Context()).Error("http panic recovered",
					zap.String("panic", fmt.Sprint(r)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, transport.Body{
					Code: transport.SystemError,
					Msg:  "internal error",
				})
			}
		}()
		c.Next()
	}
}

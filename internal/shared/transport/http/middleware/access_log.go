package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zappy/internal/shared/transport"
	"zappy/modules/kit/logx"
)

// AccessLog 为每个请求写一条访问日志。
// handler 用 transport.SetBizCode 写过业务码时以它为准，否则按 HTTP 状态码推断。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx := transport.Begin(c.Request.Context(), c.Request.Method+" "+route, "http")
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if len(c.Errors) > 0 {
			transport.SetErrorReason(ctx, c.Errors.Last().Error())
		}
		fallback := transport.OK
		if st := c.Writer.Status(); st >= http.StatusBadRequest {
			fallback = st
		}
		transport.Finish(ctx, log, fallback)
	}
}

package transport

// BizCode 是响应体里的 code 字段，HTTP/ws/gRPC 共用一套取值。
type BizCode = int

const (
	OK              = 0
	InvalidParam    = 400
	Unauthorized    = 401
	Forbidden       = 403
	NotFound        = 404
	Conflict        = 409
	PreconditionErr = 412
	SystemError     = 500
	Unavailable     = 503
	Timeout         = 504
)

// Body 是 HTTP 与 ws 共用的响应体。
type Body struct {
	Code   int            `json:"code"`
	Msg    string         `json:"msg,omitempty"`
	Reason string         `json:"reason,omitempty"`
	Data   any            `json:"data,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

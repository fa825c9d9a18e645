package errx

// 跨服务统一的系统类错误码。
//
// 约束：
// - 这些错误码只用于系统/技术类错误归一化（告警、观测、排障）
// - 业务域错误码（例如 WORLD_TEAM_EXISTS）由各业务自行定义，不在 kit 里集中

const (
	// CodeInternal 表示服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用（存储、下游服务、网络异常等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 表示请求/依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeReqParamError 表示请求参数错误。
	CodeReqParamError Code = "REQ_PARAM_ERROR"
	// CodeDataCorrupted 表示持久化数据无法还原为合法状态。
	CodeDataCorrupted Code = "DATA_CORRUPTED"
	// CodeUnauthorized 表示调用方没有提供有效凭证。
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeForbidden 表示凭证有效但角色不允许该操作。
	CodeForbidden Code = "FORBIDDEN"
)

// 系统类哨兵错误（通过 WithData/WithCause 派生新对象，禁止原地修改）。
var (
	ErrInternal      = NewSys(CodeInternal, "internal server error")
	ErrUnavailable   = NewSys(CodeUnavailable, "service unavailable")
	ErrTimeout       = NewSys(CodeTimeout, "request timeout")
	ErrReqParamERR   = NewSys(CodeReqParamError, "invalid request parameter")
	ErrDataCorrupted = NewSys(CodeDataCorrupted, "persisted data corrupted")
	ErrUnauthorized  = NewSys(CodeUnauthorized, "unauthorized")
	ErrForbidden     = NewSys(CodeForbidden, "forbidden")
)

package grpc

import (
	"google.golang.org/grpc/codes"

	"zappy/internal/shared/transport"
)

// HTTPCode 把 gRPC 状态码折算为统一业务码，便于三种协议的 access 日志对齐。
func HTTPCode(c codes.Code) int {
	switch c {
	case codes.OK:
		return transport.OK
	case codes.InvalidArgument, codes.OutOfRange:
		return transport.InvalidParam
	case codes.Unauthenticated:
		return transport.Unauthorized
	case codes.PermissionDenied:
		return transport.Forbidden
	case codes.NotFound:
		return transport.NotFound
	case codes.AlreadyExists, codes.Aborted:
		return transport.Conflict
	case codes.FailedPrecondition, codes.ResourceExhausted:
		return transport.PreconditionErr
	case codes.Unavailable:
		return transport.Unavailable
	case codes.DeadlineExceeded:
		return transport.Timeout
	default:
		return transport.SystemError
	}
}

// GRPCCode 是 HTTPCode 的逆向映射。
func GRPCCode(bizCode int) codes.Code {
	switch bizCode {
	case transport.OK:
		return codes.OK
	case transport.InvalidParam:
		return codes.InvalidArgument
	case transport.Unauthorized:
		return codes.Unauthenticated
	case transport.Forbidden:
		return codes.PermissionDenied
	case transport.NotFound:
		return codes.NotFound
	case transport.Conflict:
		return codes.AlreadyExists
	case transport.PreconditionErr:
		return codes.FailedPrecondition
	case transport.Unavailable:
		return codes.Unavailable
	case transport.Timeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

package errmap

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/status"

	"zappy/internal/shared/transport"
	tgrpc "zappy/internal/shared/transport/grpc"
	"zappy/internal/world/app/port"
	"zappy/internal/world/entity"
	"zappy/internal/world/service"
	"zappy/modules/kit/errx"
)

// Mapped 是错误在传输层的统一表示。
type Mapped struct {
	Code   int
	Msg    string
	Reason string
	Detail map[string]any
}

var bizCodes = map[errx.Code]int{
	entity.CodeInvalidOreNumber:    transport.InvalidParam,
	entity.CodeInvalidItem:         transport.InvalidParam,
	entity.CodePlayerOutOfBounds:   transport.InvalidParam,
	entity.CodePositionOutOfBounds: transport.InvalidParam,
	service.CodeInvalidTeamName:    transport.InvalidParam,
	errx.CodeReqParamError:         transport.InvalidParam,
	entity.CodeTeamDoesntExist:     transport.NotFound,
	entity.CodePlayerNotFound:      transport.NotFound,
	port.CodeWorldNotFound:         transport.NotFound,
	entity.CodeTeamExists:          transport.Conflict,
	entity.CodeTeamIsFull:          transport.PreconditionErr,
	entity.CodeTileEmpty:           transport.PreconditionErr,
	entity.CodeMaxLevel:            transport.PreconditionErr,
	errx.CodeUnauthorized:          transport.Unauthorized,
	errx.CodeForbidden:             transport.Forbidden,
	errx.CodeUnavailable:           transport.Unavailable,
	errx.CodeTimeout:               transport.Timeout,
}

// Map 把错误折算成业务码。业务错误带上原文和 data；系统错误只暴露通用文案。
func Map(err error) Mapped {
	if err == nil {
		return Mapped{Code: transport.OK}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Mapped{Code: transport.Timeout, Msg: "request timeout", Reason: string(errx.CodeTimeout)}
	}
	e, ok := errx.As(err)
	if !ok {
		return Mapped{Code: transport.SystemError, Msg: "internal error"}
	}
	code, known := bizCodes[e.Code()]
	if !known {
		code = transport.SystemError
	}
	m := Mapped{Code: code, Reason: string(e.Code())}
	switch {
	case e.IsBiz():
		m.Msg = e.Msg()
		m.Detail = e.Data()
	case known:
		m.Msg = e.Msg()
	default:
		m.Msg = "internal error"
	}
	return m
}

// IsSystem 报告该错误是否需要按系统错误记录。
func IsSystem(err error) bool {
	return Map(err).Code >= transport.SystemError
}

// HTTPStatus 把业务码折算为 HTTP 状态码。
func HTTPStatus(code int) int {
	switch code {
	case transport.OK:
		return http.StatusOK
	case transport.InvalidParam:
		return http.StatusBadRequest
	case transport.Unauthorized:
		return http.StatusUnauthorized
	case transport.Forbidden:
		return http.StatusForbidden
	case transport.NotFound:
		return http.StatusNotFound
	case transport.Conflict:
		return http.StatusConflict
	case transport.PreconditionErr:
		return http.StatusPreconditionFailed
	case transport.Unavailable:
		return http.StatusServiceUnavailable
	case transport.Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Body 构造失败响应体。
func Body(err error) transport.Body {
	m := Map(err)
	return transport.Body{Code: m.Code, Msg: m.Msg, Reason: m.Reason, Detail: m.Detail}
}

func ToRPCError(err error) error {
	if err == nil {
		return nil
	}
	m := Map(err)
	return status.Error(tgrpc.GRPCCode(m.Code), m.Msg)
}

package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"zappy/modules/kit/tracex"
)

// carried 列出随 metadata 透传的上下文值。
var carried = []struct {
	header string
	get    func(context.Context) (string, bool)
	set    func(context.Context, string) context.Context
}{
	{"x-trace-id", tracex.TraceIDFrom, tracex.WithTraceID},
	{"x-span-id", tracex.SpanIDFrom, tracex.WithSpanID},
}

// UnaryClientTraceInterceptor 把 ctx 里的 trace/span 写进出站 metadata。
func UnaryClientTraceInterceptor() gogrpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *gogrpc.ClientConn, invoker gogrpc.UnaryInvoker, opts ...gogrpc.CallOption) error {
		return invoker(injectTraceToOutgoing(ctx), method, req, reply, cc, opts...)
	}
}

// UnaryServerTraceInterceptor 从入站 metadata 恢复 trace；对端没带 trace_id 时新建一个。
func UnaryServerTraceInterceptor() gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		return handler(tracex.Ensure(extractTraceFromIncoming(ctx), ""), req)
	}
}

func injectTraceToOutgoing(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, c := range carried {
		if v, ok := c.get(ctx); ok {
			ctx = metadata.AppendToOutgoingContext(ctx, c.header, v)
		}
	}
	return ctx
}

func extractTraceFromIncoming(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	for _, c := range carried {
		if vs := md.Get(c.header); len(vs) > 0 && vs[0] != "" {
			ctx = c.set(ctx, vs[0])
		}
	}
	return ctx
}

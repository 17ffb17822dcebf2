package command

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HandlerFunc は 1 コマンドを処理します。payload は JSON のままで渡され、
// 戻り値は応答としてそのまま JSON エンコードされます。
type HandlerFunc func(ctx context.Context, payload json.RawMessage) (interface{}, error)

// NewServiceDesc はコマンド名からハンドラへの対応表を grpc.ServiceDesc へ
// 組み立てます。コマンド集合は固定かつ小さいため、生成コードではなく
// 手組みのディスクリプタで十分です。
func NewServiceDesc(handlers map[string]HandlerFunc) *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*interface{})(nil),
	}
	for cmd, h := range handlers {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: cmd,
			Handler:    methodHandler(cmd, h),
		})
	}
	return desc
}

func methodHandler(cmd string, h HandlerFunc) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		var raw json.RawMessage
		if err := dec(&raw); err != nil {
			return nil, status.Error(codes.InvalidArgument, "malformed command payload")
		}

		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			payload, _ := req.(json.RawMessage)
			return h(ctx, payload)
		}

		if interceptor == nil {
			return handler(ctx, raw)
		}
		return interceptor(ctx, raw, &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(cmd)}, handler)
	}
}

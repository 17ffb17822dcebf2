package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingUnaryInterceptor はコマンドごとの処理結果を記録します。
// バックエンド発の障害はここで必ずログに残ってからエッジへ返ります。
func LoggingUnaryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(started)

		if err != nil {
			log.Warn("command failed",
				zap.String("method", info.FullMethod),
				zap.String("code", status.Code(err).String()),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
			return nil, err
		}

		log.Info("command handled",
			zap.String("method", info.FullMethod),
			zap.Duration("elapsed", elapsed))
		return resp, nil
	}
}

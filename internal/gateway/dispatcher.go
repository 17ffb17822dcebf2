package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/grpc/command"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrUnknownCommand はどのバックエンドも所有しないコマンド名を表します。
var ErrUnknownCommand = errors.New("gateway: unknown command")

// CommandDispatcher はコマンドを所有バックエンドへ送り、ちょうど一つの
// 応答または障害を待ちます。
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd string, payload, reply interface{}) error
}

// Dispatcher はバックエンドごとの gRPC 接続を束ねる CommandDispatcher 実装です。
type Dispatcher struct {
	auth    grpc.ClientConnInterface
	absence grpc.ClientConnInterface
}

// NewDispatcher は Dispatcher を生成します。
func NewDispatcher(auth, absence grpc.ClientConnInterface) *Dispatcher {
	return &Dispatcher{auth: auth, absence: absence}
}

// Dispatch はコマンド名から所有バックエンドを選び、ペイロードを送信して
// 応答を reply へデコードします。呼び出しは同期的で、応答か障害の
// いずれかが一度だけ返ります。再試行は行いません。
func (d *Dispatcher) Dispatch(ctx context.Context, cmd string, payload, reply interface{}) error {
	var conn grpc.ClientConnInterface
	switch {
	case command.IsAuthCommand(cmd):
		conn = d.auth
	case command.IsAbsenceCommand(cmd):
		conn = d.absence
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	return conn.Invoke(ctx, command.FullMethod(cmd), payload, reply, grpc.ForceCodec(command.Codec{}))
}

// DialBackend はバックエンドへの gRPC 接続を生成します。
func DialBackend(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("gateway: dial backend %s: %w", addr, err)
	}
	return conn, nil
}

package command

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName はワイヤ上の content-subtype（application/grpc+json）です。
const codecName = "json"

// Codec は JSON ペイロードをそのまま運ぶ gRPC コーデックです。
// 生成コードを持たないコマンド転送のため、メッセージは素の構造体です。
type Codec struct{}

// Marshal は v を JSON にエンコードします。
func (Codec) Marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("command: marshal payload: %w", err)
	}
	return b, nil
}

// Unmarshal は data を v へデコードします。
func (Codec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("command: unmarshal payload: %w", err)
	}
	return nil
}

// Name はコーデック名を返します。
func (Codec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(Codec{})
}

package storage

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeSnapshot 将房间快照编码为 protobuf 二进制（google.protobuf.Struct）
//
// 棋盘是不透明的 JSON，用 Struct 承载可以避免为其定义固定 schema。
func EncodeSnapshot(data *RoomData) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	st := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("json -> struct: %w", err)
	}
	return proto.Marshal(st)
}

package utils

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/proto"
)

// EncodeEvent 将 protobuf 消息编码为带事件类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 protobuf 序列化数据（使用 MarshalAppend）
func EncodeEvent(eventType uint32, msg proto.Message) ([]byte, error) {
	const extraBuffer = 32

	size := proto.Size(msg)
	buf := make([]byte, 4, 4+size+extraBuffer)
	binary.LittleEndian.PutUint32(buf[:4], eventType)

	opts := proto.MarshalOptions{Deterministic: true}
	result, err := opts.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}
	return result, nil
}

// DecodeEvent 是 EncodeEvent 的逆过程，msg 需为目标类型的空实例
func DecodeEvent(data []byte, msg proto.Message) (uint32, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("DecodeEvent: data too short: %d", len(data))
	}
	eventType := binary.LittleEndian.Uint32(data[:4])
	if err := proto.Unmarshal(data[4:], msg); err != nil {
		return eventType, fmt.Errorf("DecodeEvent: unmarshal %T: %w", msg, err)
	}
	return eventType, nil
}

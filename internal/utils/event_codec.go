package utils

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const eventTypeSize = 4

// EncodeEvent 编码为带事件类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 protobuf 序列化数据（确定性编码）
func EncodeEvent(eventType uint32, msg proto.Message) ([]byte, error) {
	buf := make([]byte, eventTypeSize, eventTypeSize+proto.Size(msg))
	binary.LittleEndian.PutUint32(buf, eventType)

	opts := proto.MarshalOptions{Deterministic: true}
	out, err := opts.MarshalAppend(buf, msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}
	return out, nil
}

// EncodeFields map 形式的事件负载，以 structpb.Struct 编码
func EncodeFields(eventType uint32, fields map[string]interface{}) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("EncodeFields: %w", err)
	}
	return EncodeEvent(eventType, st)
}

// DecodeFields EncodeFields 的逆过程，供消费端与测试使用
func DecodeFields(data []byte) (uint32, map[string]interface{}, error) {
	if len(data) < eventTypeSize {
		return 0, nil, fmt.Errorf("DecodeFields: payload too short (%d bytes)", len(data))
	}
	eventType := binary.LittleEndian.Uint32(data[:eventTypeSize])

	var st structpb.Struct
	if err := proto.Unmarshal(data[eventTypeSize:], &st); err != nil {
		return 0, nil, fmt.Errorf("DecodeFields: unmarshal: %w", err)
	}
	return eventType, st.AsMap(), nil
}

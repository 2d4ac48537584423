package journal

import (
	"encoding/json"
	"errors"

	"google.golang.org/protobuf/proto"
)

// Serializer encodes command payloads for journal records. JSON is the
// default; the protobuf variant serves callers whose commands are
// generated proto messages.
type Serializer interface {
	Encode(any) ([]byte, error)
	Decode([]byte, any) error
}

// ---------- JSON ----------

type JSONSerializer struct{}

func (JSONSerializer) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// ---------- Protobuf ----------

var ErrNotProto = errors.New("value does not implement proto.Message")

type ProtoSerializer struct{}

func (ProtoSerializer) Encode(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, ErrNotProto
	}
	return proto.Marshal(msg)
}

func (ProtoSerializer) Decode(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return ErrNotProto
	}
	return proto.Unmarshal(data, msg)
}

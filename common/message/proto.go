package message

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func Encode(msg proto.Message) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func Decode(data []byte, msg proto.Message) error {
	return proto.Unmarshal(data, msg)
}

// EncodeMap marshals a generic document through structpb.
func EncodeMap(doc map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(doc)
	if err != nil {
		return nil, err
	}
	return Encode(s)
}

func DecodeMap(data []byte) (map[string]any, error) {
	s := &structpb.Struct{}
	if err := Decode(data, s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}

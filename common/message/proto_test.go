package message

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestEncodeMap(t *testing.T) {
	doc := map[string]any{
		"layer":  float64(3),
		"mode":   "triangle",
		"points": []any{0.0, 1.0, 2.5},
	}
	data, err := EncodeMap(doc)
	if err != nil {
		t.Fatal(err)
	}
	again, err := EncodeMap(doc)
	if err != nil || string(again) != string(data) {
		t.Fatal("encoding must be deterministic")
	}
	res, err := DecodeMap(data)
	if err != nil {
		t.Fatal(err)
	}
	if res["layer"].(float64) != 3 || res["mode"].(string) != "triangle" {
		t.Fatal("scalar round trip")
	}
	if pts := res["points"].([]any); len(pts) != 3 || pts[2].(float64) != 2.5 {
		t.Fatal("list round trip")
	}
}

func TestEncodeMapRejectsUnknownTypes(t *testing.T) {
	if _, err := EncodeMap(map[string]any{"bad": struct{}{}}); err == nil {
		t.Fatal("struct values are not representable")
	}
}

func TestDecode(t *testing.T) {
	v := structpb.NewStringValue("polynav")
	data, err := Encode(v)
	if err != nil {
		t.Fatal(err)
	}
	out := &structpb.Value{}
	if err := Decode(data, out); err != nil || out.GetStringValue() != "polynav" {
		t.Fatal("value round trip")
	}
	if err := Decode([]byte{0xff, 0xff}, out); err == nil {
		t.Fatal("garbage must not decode")
	}
}

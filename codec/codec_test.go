package codec

import (
	"bytes"
	"strings"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type item struct {
	ID   string `json:"id" msgpack:"id"`
	Tags []string
}

func TestLimitRejectsOversizedBeforeInner(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 4}
	if _, err := c.Decode([]byte("12345")); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
	got, err := c.Decode([]byte("1234"))
	if err != nil || got != "1234" {
		t.Fatalf("boundary decode: got=%q err=%v", got, err)
	}

	off := Limit[string]{Inner: String{}}
	if _, err := off.Decode(bytes.Repeat([]byte("x"), 1<<16)); err != nil {
		t.Fatalf("MaxDecode=0 must disable the limit: %v", err)
	}
}

func TestCBORDeterministicIsStableForMaps(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	m := map[string]int{"z": 1, "a": 2, "m": 3, "b": 4}
	first, err := c.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := c.Encode(map[string]int{"b": 4, "m": 3, "a": 2, "z": 1})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding differs between runs")
		}
	}
	back, err := c.Decode(first)
	if err != nil || back["m"] != 3 || len(back) != 4 {
		t.Fatalf("decode: %v %v", back, err)
	}
}

func TestStructCodecsAgreeOnValue(t *testing.T) {
	in := item{ID: "42", Tags: []string{"a", "b"}}
	for name, c := range map[string]Codec[item]{
		"json":    JSON[item]{},
		"msgpack": Msgpack[item]{},
		"cbor":    MustCBOR[item](false),
	} {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if out.ID != in.ID || len(out.Tags) != 2 || out.Tags[1] != "b" {
			t.Fatalf("%s: got %+v want %+v", name, out, in)
		}
	}
}

func TestDecodeGarbageFails(t *testing.T) {
	if _, err := (JSON[item]{}).Decode([]byte("{not json")); err == nil {
		t.Fatalf("json: expected error")
	}
	if _, err := (Msgpack[item]{}).Decode([]byte{0xc1}); err == nil { // 0xc1 is never used in msgpack
		t.Fatalf("msgpack: expected error")
	}
}

func TestProtobufUsesConstructor(t *testing.T) {
	c := NewProtobuf(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	b, err := c.Encode(wrapperspb.String("hello"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if !proto.Equal(got, wrapperspb.String("hello")) {
		t.Fatalf("got %v", got)
	}
}

func TestStringKeyIsIdentity(t *testing.T) {
	for _, k := range []string{"", "ns:user:1", "ns:user:*"} {
		if enc := (StringKey{}).EncodeKey(k); enc != k {
			t.Fatalf("EncodeKey(%q)=%q", k, enc)
		}
		dec, err := StringKey{}.DecodeKey(k)
		if err != nil || dec != k {
			t.Fatalf("DecodeKey(%q)=%q,%v", k, dec, err)
		}
	}
}

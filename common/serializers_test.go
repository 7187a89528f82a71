package common

import (
	"bytes"
	"testing"
)

func TestHashSerializer(t *testing.T) {
	var s HashSerializer
	var _ Serializer[Hash] = s

	hash := Hash{0x12, 0x34, 0x56}
	b := s.ToBytes(hash)
	if len(b) != s.Size() {
		t.Errorf("serialized size mismatch, wanted %d, got %d", s.Size(), len(b))
	}
	if restored := s.FromBytes(b); restored != hash {
		t.Errorf("round-trip mismatch, wanted %v, got %v", hash, restored)
	}
}

func TestUint64Serializer(t *testing.T) {
	var s Uint64Serializer
	var _ Serializer[uint64] = s

	for _, value := range []uint64{0, 1, 4096, 1<<63 + 17} {
		b := s.ToBytes(value)
		if len(b) != s.Size() {
			t.Errorf("serialized size mismatch, wanted %d, got %d", s.Size(), len(b))
		}
		if restored := s.FromBytes(b); restored != value {
			t.Errorf("round-trip mismatch, wanted %d, got %d", value, restored)
		}
	}
}

func TestUint64Serializer_OrderPreserving(t *testing.T) {
	var s Uint64Serializer
	if bytes.Compare(s.ToBytes(41), s.ToBytes(42)) >= 0 {
		t.Errorf("big-endian encoding must preserve ordering")
	}
}

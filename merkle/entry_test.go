package merkle

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/Fidelio-foundation/Fidelio/common"
)

func TestEncodeEntry_DirectoryEncodingIsOrderIndependent(t *testing.T) {
	first := Directory{}
	second := Directory{}
	names := []string{"m", "a", "zz", "b", "x"}
	for i, name := range names {
		first[name] = common.Hash{byte(i)}
	}
	for i := len(names) - 1; i >= 0; i-- {
		second[names[i]] = common.Hash{byte(i)}
	}

	a, err := EncodeEntry(first)
	if err != nil {
		t.Fatalf("failed to encode directory; %s", err)
	}
	b, err := EncodeEntry(second)
	if err != nil {
		t.Fatalf("failed to encode directory; %s", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("equal directories encoded differently:\n%x\n%x", a, b)
	}
}

func TestEntryCodec_RoundTrip(t *testing.T) {
	parent := common.Hash{0xaa, 0xbb}
	entries := map[string]Entry{
		"blob":           Blob([]byte{1, 2, 3}),
		"emptyBlob":      Blob{},
		"emptyDirectory": Directory{},
		"directory": Directory{
			"data":  {0x01},
			"rolls": {0x02},
		},
		"commit": Commit{
			Root:    common.Hash{0x11},
			Parent:  &parent,
			Time:    1623070907,
			Author:  "baker",
			Message: "lvl 42",
		},
		"genesisCommit": Commit{
			Root:   common.Hash{0x12},
			Author: "genesis",
		},
	}

	for name, entry := range entries {
		t.Run(name, func(t *testing.T) {
			data, err := EncodeEntry(entry)
			if err != nil {
				t.Fatalf("failed to encode entry; %s", err)
			}
			restored, err := DecodeEntry(data)
			if err != nil {
				t.Fatalf("failed to decode entry; %s", err)
			}
			if !reflect.DeepEqual(entry, restored) {
				t.Errorf("round-trip mismatch, wanted %+v, got %+v", entry, restored)
			}
		})
	}
}

func TestDecodeEntry_RejectsMalformedInput(t *testing.T) {
	commit, err := EncodeEntry(Commit{Root: common.Hash{1}})
	if err != nil {
		t.Fatalf("failed to encode commit; %s", err)
	}
	inputs := map[string][]byte{
		"empty":          {},
		"unknownTag":     {0x77, 0x80},
		"truncatedBlob":  {0x00, 0xb8},
		"blobPayloadDir": {0x01, 0x81, 0x00},
		"truncatedCommit": func() []byte {
			return commit[:len(commit)-3]
		}(),
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeEntry(input); !errors.Is(err, ErrCorruptEntry) {
				t.Errorf("expected ErrCorruptEntry, got %v", err)
			}
		})
	}
}

func TestEncodeEntry_KindsAreDistinguishable(t *testing.T) {
	blob, err := EncodeEntry(Blob{})
	if err != nil {
		t.Fatalf("failed to encode blob; %s", err)
	}
	dir, err := EncodeEntry(Directory{})
	if err != nil {
		t.Fatalf("failed to encode directory; %s", err)
	}
	if hashData(blob) == hashData(dir) {
		t.Errorf("empty blob and empty directory must not collide")
	}
}

package ordered

import (
	"bytes"
	"fmt"
	"testing"
)

func TestBackend_KeepsKeysSortedOnInsertion(t *testing.T) {
	db := NewBackend()
	for _, key := range []string{"m", "c", "x", "a", "t", "b"} {
		if err := db.Put([]byte(key), []byte(key)); err != nil {
			t.Fatalf("failed to put value; %s", err)
		}
	}

	it := db.NewIterator(nil)
	defer it.Release()
	var previous []byte
	for it.Next() {
		key := it.Key()
		if previous != nil && bytes.Compare(previous, key) >= 0 {
			t.Errorf("keys out of order, %s before %s", previous, key)
		}
		previous = key
	}
}

func TestBackend_FindItemEdges(t *testing.T) {
	db := NewBackend()

	if index, exists := db.findItem([]byte("a")); exists || index != 0 {
		t.Errorf("empty list lookup, wanted (0,false), got (%d,%t)", index, exists)
	}

	for _, key := range []string{"b", "d", "f"} {
		if err := db.Put([]byte(key), []byte{1}); err != nil {
			t.Fatalf("failed to put value; %s", err)
		}
	}
	tests := []struct {
		key    string
		index  int
		exists bool
	}{
		{"a", 0, false},
		{"b", 0, true},
		{"c", 1, false},
		{"d", 1, true},
		{"e", 2, false},
		{"f", 2, true},
		{"g", 3, false},
	}
	for _, test := range tests {
		index, exists := db.findItem([]byte(test.key))
		if index != test.index || exists != test.exists {
			t.Errorf("unexpected result for %s, wanted (%d,%t), got (%d,%t)",
				test.key, test.index, test.exists, index, exists)
		}
	}
}

func TestBackend_DeleteKeepsOrder(t *testing.T) {
	db := NewBackend()
	for i := 0; i < 9; i++ {
		if err := db.Put([]byte(fmt.Sprintf("key-%d", i)), []byte{byte(i)}); err != nil {
			t.Fatalf("failed to put value; %s", err)
		}
	}
	if err := db.Delete([]byte("key-4")); err != nil {
		t.Fatalf("failed to delete key; %s", err)
	}

	it := db.NewIterator([]byte("key-"))
	defer it.Release()
	count := 0
	var previous []byte
	for it.Next() {
		key := it.Key()
		if string(key) == "key-4" {
			t.Errorf("deleted key still iterated")
		}
		if previous != nil && bytes.Compare(previous, key) >= 0 {
			t.Errorf("keys out of order, %s before %s", previous, key)
		}
		previous = key
		count++
	}
	if want, got := 8, count; want != got {
		t.Errorf("unexpected pair count, wanted %d, got %d", want, got)
	}
}

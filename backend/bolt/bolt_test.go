package bolt

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Fidelio-foundation/Fidelio/backend"
)

func TestBackend_DataSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bolt")

	db, err := OpenBackend(path)
	if err != nil {
		t.Fatalf("failed to init bolt; %s", err)
	}
	if err := db.Put([]byte("key"), []byte("value")); err != nil {
		t.Fatalf("failed to put value; %s", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close bolt; %s", err)
	}

	db, err = OpenBackend(path)
	if err != nil {
		t.Fatalf("failed to reopen bolt; %s", err)
	}
	defer db.Close()

	value, err := db.Get([]byte("key"))
	if err != nil {
		t.Fatalf("failed to get value after reopen; %s", err)
	}
	if want, got := "value", string(value); want != got {
		t.Errorf("unexpected value after reopen, wanted %s, got %s", want, got)
	}
}

func TestBackend_GetDistinguishesAbsenceFromEmptyValue(t *testing.T) {
	db, err := OpenBackend(filepath.Join(t.TempDir(), "data.bolt"))
	if err != nil {
		t.Fatalf("failed to init bolt; %s", err)
	}
	defer db.Close()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := db.Put([]byte("empty"), []byte{}); err != nil {
		t.Fatalf("failed to put empty value; %s", err)
	}
	value, err := db.Get([]byte("empty"))
	if err != nil {
		t.Fatalf("an empty value must be readable; %s", err)
	}
	if len(value) != 0 {
		t.Errorf("unexpected value, wanted empty, got %x", value)
	}
}

func TestBackend_IteratorReleaseIsIdempotent(t *testing.T) {
	db, err := OpenBackend(filepath.Join(t.TempDir(), "data.bolt"))
	if err != nil {
		t.Fatalf("failed to init bolt; %s", err)
	}
	defer db.Close()

	if err := db.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("failed to put value; %s", err)
	}

	it := db.NewIterator(nil)
	for it.Next() {
	}
	it.Release()
	it.Release()

	// the read transaction must be gone, writes may proceed
	if err := db.Put([]byte("b"), []byte("2")); err != nil {
		t.Fatalf("failed to put value after iteration; %s", err)
	}
}

// Package bolt provides a durable Backend on top of bbolt, an
// embedded B+tree engine with one writer and MVCC readers.
package bolt

import (
	"bytes"

	bbolt "go.etcd.io/bbolt"

	"github.com/Fidelio-foundation/Fidelio/backend"
)

var bucketName = []byte("data")

// Backend is a bbolt backed key/value engine. Every write runs in its
// own transaction; readers and iterators see consistent snapshots.
type Backend struct {
	db *bbolt.DB
}

// OpenBackend opens or creates a bbolt database file at the given
// path.
func OpenBackend(path string) (*Backend, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Backend{db: db}, nil
}

func (m *Backend) Get(key []byte) ([]byte, error) {
	var value []byte
	found := false
	err := m.db.View(func(tx *bbolt.Tx) error {
		// Seek distinguishes an absent key from a stored empty value.
		k, v := tx.Bucket(bucketName).Cursor().Seek(key)
		if k != nil && bytes.Equal(k, key) {
			found = true
			value = bytes.Clone(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, backend.ErrNotFound
	}
	return value, nil
}

func (m *Backend) Has(key []byte) (bool, error) {
	exists := false
	err := m.db.View(func(tx *bbolt.Tx) error {
		k, _ := tx.Bucket(bucketName).Cursor().Seek(key)
		exists = k != nil && bytes.Equal(k, key)
		return nil
	})
	return exists, err
}

func (m *Backend) Put(key []byte, value []byte) error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

func (m *Backend) Delete(key []byte) error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key)
	})
}

// NewIterator holds a read transaction open until the iterator is
// exhausted or released, so the walked range is one consistent
// snapshot in the bytewise key order of the tree.
func (m *Backend) NewIterator(prefix []byte) backend.Iterator {
	tx, err := m.db.Begin(false)
	if err != nil {
		return &iterator{err: err}
	}
	return &iterator{
		tx:     tx,
		cursor: tx.Bucket(bucketName).Cursor(),
		prefix: bytes.Clone(prefix),
		first:  true,
	}
}

func (m *Backend) Flush() error {
	return m.db.Sync()
}

func (m *Backend) Close() error {
	return m.db.Close()
}

type iterator struct {
	tx     *bbolt.Tx
	cursor *bbolt.Cursor
	prefix []byte
	first  bool
	key    []byte
	value  []byte
	err    error
}

func (i *iterator) Next() bool {
	if i.err != nil || i.cursor == nil {
		return false
	}
	var k, v []byte
	if i.first {
		k, v = i.cursor.Seek(i.prefix)
		i.first = false
	} else {
		k, v = i.cursor.Next()
	}
	if k == nil || !bytes.HasPrefix(k, i.prefix) {
		i.Release()
		return false
	}
	i.key = bytes.Clone(k)
	i.value = bytes.Clone(v)
	return true
}

func (i *iterator) Key() []byte {
	return bytes.Clone(i.key)
}

func (i *iterator) Value() []byte {
	return bytes.Clone(i.value)
}

func (i *iterator) Error() error {
	return i.err
}

// Release ends the backing read transaction. It is safe to call
// repeatedly.
func (i *iterator) Release() {
	if i.tx != nil {
		_ = i.tx.Rollback()
		i.tx = nil
		i.cursor = nil
	}
}

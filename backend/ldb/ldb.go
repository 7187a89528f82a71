// Package ldb provides a durable Backend on top of LevelDB, a
// log-structured merge-tree engine.
package ldb

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Fidelio-foundation/Fidelio/backend"
)

// Backend is a LevelDB backed key/value engine. LevelDB provides the
// snapshot isolation concurrent readers need while the single writer
// makes progress.
type Backend struct {
	db *leveldb.DB
}

// OpenBackend opens or creates a LevelDB instance in the given
// directory.
func OpenBackend(path string, options *opt.Options) (*Backend, error) {
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db}, nil
}

func (m *Backend) Get(key []byte) ([]byte, error) {
	value, err := m.db.Get(key, nil)
	if err == errors.ErrNotFound {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Backend) Has(key []byte) (bool, error) {
	return m.db.Has(key, nil)
}

func (m *Backend) Put(key []byte, value []byte) error {
	return m.db.Put(key, value, &opt.WriteOptions{Sync: false})
}

func (m *Backend) Delete(key []byte) error {
	return m.db.Delete(key, &opt.WriteOptions{Sync: false})
}

// NewIterator iterates the prefix range over a consistent snapshot of
// the database, in the natural key order of the engine.
func (m *Backend) NewIterator(prefix []byte) backend.Iterator {
	return &ldbIterator{it: m.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

// Flush is a no-op, LevelDB makes writes durable through its own
// write-ahead log.
func (m *Backend) Flush() error {
	return nil
}

func (m *Backend) Close() error {
	return m.db.Close()
}

type ldbIterator struct {
	it iterator.Iterator
}

func (i *ldbIterator) Next() bool {
	return i.it.Next()
}

func (i *ldbIterator) Key() []byte {
	return bytes.Clone(i.it.Key())
}

func (i *ldbIterator) Value() []byte {
	return bytes.Clone(i.it.Value())
}

func (i *ldbIterator) Error() error {
	return i.it.Error()
}

func (i *ldbIterator) Release() {
	i.it.Release()
}

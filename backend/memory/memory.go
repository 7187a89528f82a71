// Package memory provides a transient Backend backed by a process
// memory hash map. All data is lost when the process exits.
package memory

import (
	"bytes"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/Fidelio-foundation/Fidelio/backend"
)

// Backend is an in-memory key/value engine guarded by a read/write
// lock, allowing concurrent readers next to a single writer.
type Backend struct {
	lock sync.RWMutex
	data map[string][]byte
}

// NewBackend creates an empty in-memory backend.
func NewBackend() *Backend {
	return &Backend{
		data: map[string][]byte{},
	}
}

func (m *Backend) Get(key []byte) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	value, exists := m.data[string(key)]
	if !exists {
		return nil, backend.ErrNotFound
	}
	return bytes.Clone(value), nil
}

func (m *Backend) Has(key []byte) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, exists := m.data[string(key)]
	return exists, nil
}

func (m *Backend) Put(key []byte, value []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.data[string(key)] = bytes.Clone(value)
	return nil
}

func (m *Backend) Delete(key []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.data, string(key))
	return nil
}

// NewIterator captures a snapshot of all pairs under the prefix at
// creation time and serves them in bytewise key order.
func (m *Backend) NewIterator(prefix []byte) backend.Iterator {
	m.lock.RLock()
	defer m.lock.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if bytes.HasPrefix([]byte(key), prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	pairs := make([]pair, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, pair{[]byte(key), bytes.Clone(m.data[key])})
	}
	return &iterator{pairs: pairs, index: -1}
}

func (m *Backend) Flush() error {
	return nil
}

func (m *Backend) Close() error {
	return nil
}

type pair struct {
	key   []byte
	value []byte
}

type iterator struct {
	pairs []pair
	index int
}

func (i *iterator) Next() bool {
	i.index++
	return i.index < len(i.pairs)
}

func (i *iterator) Key() []byte {
	return bytes.Clone(i.pairs[i.index].key)
}

func (i *iterator) Value() []byte {
	return bytes.Clone(i.pairs[i.index].value)
}

func (i *iterator) Error() error {
	return nil
}

func (i *iterator) Release() {
	i.pairs = nil
}

// Package ordered provides a transient Backend keeping its pairs in a
// slice sorted by key. Iteration order is the bytewise key order,
// which makes runs over this engine deterministic and easy to assert
// on in tests.
package ordered

import (
	"bytes"
	"sync"

	"github.com/Fidelio-foundation/Fidelio/backend"
)

// Backend is an in-memory key/value engine with its content sorted on
// insertion. Reads and range scans use binary search.
type Backend struct {
	lock sync.RWMutex
	list []entry
}

type entry struct {
	key   []byte
	value []byte
}

// NewBackend creates an empty ordered backend.
func NewBackend() *Backend {
	return &Backend{}
}

func (m *Backend) Get(key []byte) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if index, exists := m.findItem(key); exists {
		return bytes.Clone(m.list[index].value), nil
	}
	return nil, backend.ErrNotFound
}

func (m *Backend) Has(key []byte) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, exists := m.findItem(key)
	return exists, nil
}

func (m *Backend) Put(key []byte, value []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	index, exists := m.findItem(key)
	if exists {
		m.list[index].value = bytes.Clone(value)
		return nil
	}
	m.list = append(m.list, entry{})
	copy(m.list[index+1:], m.list[index:])
	m.list[index] = entry{key: bytes.Clone(key), value: bytes.Clone(value)}
	return nil
}

func (m *Backend) Delete(key []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if index, exists := m.findItem(key); exists {
		m.list = append(m.list[:index], m.list[index+1:]...)
	}
	return nil
}

// NewIterator captures the sorted run of pairs under the prefix at
// creation time and serves it in key order.
func (m *Backend) NewIterator(prefix []byte) backend.Iterator {
	m.lock.RLock()
	defer m.lock.RUnlock()

	start, _ := m.findItem(prefix)
	pairs := make([]entry, 0)
	for i := start; i < len(m.list) && bytes.HasPrefix(m.list[i].key, prefix); i++ {
		pairs = append(pairs, entry{
			key:   bytes.Clone(m.list[i].key),
			value: bytes.Clone(m.list[i].value),
		})
	}
	return &iterator{pairs: pairs, index: -1}
}

func (m *Backend) Flush() error {
	return nil
}

func (m *Backend) Close() error {
	return nil
}

// findItem finds a key in the list, if it exists. It returns the
// index of the key that was found, and it returns true. If the key
// does not exist, it returns false and the index of the position
// where the key would have to be inserted to keep the list sorted.
func (m *Backend) findItem(key []byte) (index int, exists bool) {
	start := 0
	end := len(m.list) - 1
	mid := start
	var res int
	for start <= end {
		mid = (start + end) / 2
		res = bytes.Compare(m.list[mid].key, key)
		if res == 0 {
			return mid, true
		} else if res < 0 {
			start = mid + 1
		} else {
			end = mid - 1
		}
	}
	if res < 0 {
		mid += 1
	}
	return mid, false
}

type iterator struct {
	pairs []entry
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

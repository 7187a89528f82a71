// Package backend defines the contract of the pluggable key/value
// engines committed Merkle entries are persisted in. Engines are
// selected at construction time via configuration and are fully
// interchangeable behind the Backend interface.
package backend

import (
	"github.com/Fidelio-foundation/Fidelio/common"
)

// ErrNotFound is returned by Get when the key is absent. Absence is
// never reported as an empty value.
const ErrNotFound = common.ConstError("key not found")

// Backend is a key/value persistence engine. Implementations must
// tolerate concurrent readers while a single writer makes progress,
// and writes of a single key are atomic: a failed Put or Delete never
// leaves a torn value observable under the key.
type Backend interface {
	// Get returns the value stored under the key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Has returns whether the key is present.
	Has(key []byte) (bool, error)

	// Put stores or overwrites the value under the key. Once Put
	// returns, subsequent Gets observe the new value.
	Put(key []byte, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// NewIterator iterates all pairs whose key starts with the given
	// prefix, in an order that is implementation-defined but stable
	// within one backend instance. The iterator must be released
	// after use.
	NewIterator(prefix []byte) Iterator

	common.FlushAndCloser
}

// Iterator walks key/value pairs lazily. Next must be called before
// the first access to Key or Value; it returns false once the
// sequence is exhausted. Key and Value return copies that remain
// valid after the iterator advances or is released.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// TableSpace divides the key space of one backend instance into
// domains by prefixing every key with one byte.
type TableSpace byte

const (
	// EntrySpace holds serialized Merkle entries keyed by their hash.
	EntrySpace TableSpace = 'e'
	// BlockSpace maps block hashes to the context hash produced by
	// applying the block.
	BlockSpace TableSpace = 'b'
	// MetaSpace holds head bookkeeping such as the last commit hash.
	MetaSpace TableSpace = 'm'
)

// DbKey is a key with its table space prefix applied.
type DbKey []byte

// ToDBKey converts the input key to its respective table space key.
func ToDBKey(t TableSpace, key []byte) DbKey {
	dbKey := make(DbKey, 0, len(key)+1)
	dbKey = append(dbKey, byte(t))
	return append(dbKey, key...)
}

func (d DbKey) ToBytes() []byte {
	return d
}

// Prefix returns the iteration prefix covering every key of the
// table space.
func (t TableSpace) Prefix() []byte {
	return []byte{byte(t)}
}

// Package merkle builds and reads the content-addressed entry graph
// the context of every block is stored in. Entries are immutable and
// referenced only by the blake2b hash of their serialized content;
// path mutations are copy-on-write and never touch existing entries.
package merkle

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"

	"github.com/Fidelio-foundation/Fidelio/common"
)

// ErrCorruptEntry is returned when bytes referenced by an entry hash
// do not decode to a valid entry, or when a path descends through a
// blob.
const ErrCorruptEntry = common.ConstError("corrupt entry")

// Entry is one node of the context graph: a value blob, a named
// directory of child hashes, or a commit sealing one root. Entries
// returned by a Store are shared and must be treated as read-only.
type Entry interface {
	kind() byte
}

// Blob is a leaf entry holding one stored value.
type Blob []byte

// Directory maps child names to the hashes of their entries.
type Directory map[string]common.Hash

// Commit seals a root directory as one committed context, binding it
// to its predecessor and the commit metadata.
type Commit struct {
	Root    common.Hash
	Parent  *common.Hash // nil for the first commit of a lineage
	Time    uint64
	Author  string
	Message string
}

const (
	blobTag      byte = 0x00
	directoryTag byte = 0x01
	commitTag    byte = 0x02
)

func (b Blob) kind() byte      { return blobTag }
func (d Directory) kind() byte { return directoryTag }
func (c Commit) kind() byte    { return commitTag }

type dirChild struct {
	Name string
	Hash common.Hash
}

type commitPayload struct {
	Root    common.Hash
	Parent  []byte
	Time    uint64
	Author  string
	Message string
}

// EncodeEntry serializes an entry to its canonical form: a one-byte
// kind tag followed by the RLP encoding of the payload. Directory
// children are encoded sorted by name, so equal content always yields
// equal bytes and therefore an equal hash.
func EncodeEntry(entry Entry) ([]byte, error) {
	var payload []byte
	var err error
	switch e := entry.(type) {
	case Blob:
		payload, err = rlp.EncodeToBytes([]byte(e))
	case Directory:
		children := make([]dirChild, 0, len(e))
		for name, hash := range e {
			children = append(children, dirChild{Name: name, Hash: hash})
		}
		slices.SortFunc(children, func(a, b dirChild) int { return strings.Compare(a.Name, b.Name) })
		payload, err = rlp.EncodeToBytes(children)
	case Commit:
		var parent []byte
		if e.Parent != nil {
			parent = e.Parent[:]
		}
		payload, err = rlp.EncodeToBytes(commitPayload{
			Root:    e.Root,
			Parent:  parent,
			Time:    e.Time,
			Author:  e.Author,
			Message: e.Message,
		})
	default:
		return nil, fmt.Errorf("unsupported entry type %T", entry)
	}
	if err != nil {
		return nil, err
	}
	return append([]byte{entry.kind()}, payload...), nil
}

// DecodeEntry parses the canonical serialized form produced by
// EncodeEntry. Any malformed input is reported as ErrCorruptEntry.
func DecodeEntry(data []byte) (Entry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrCorruptEntry)
	}
	switch data[0] {
	case blobTag:
		var blob []byte
		if err := rlp.DecodeBytes(data[1:], &blob); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptEntry, err)
		}
		return Blob(blob), nil
	case directoryTag:
		var children []dirChild
		if err := rlp.DecodeBytes(data[1:], &children); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptEntry, err)
		}
		dir := make(Directory, len(children))
		for _, child := range children {
			if _, exists := dir[child.Name]; exists {
				return nil, fmt.Errorf("%w: duplicate child %q", ErrCorruptEntry, child.Name)
			}
			dir[child.Name] = child.Hash
		}
		return dir, nil
	case commitTag:
		var payload commitPayload
		if err := rlp.DecodeBytes(data[1:], &payload); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrCorruptEntry, err)
		}
		commit := Commit{
			Root:    payload.Root,
			Time:    payload.Time,
			Author:  payload.Author,
			Message: payload.Message,
		}
		if len(payload.Parent) > 0 {
			parent, err := common.HashFromBytes(payload.Parent)
			if err != nil {
				return nil, fmt.Errorf("%w: bad parent; %s", ErrCorruptEntry, err)
			}
			commit.Parent = &parent
		}
		return commit, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind tag 0x%02x", ErrCorruptEntry, data[0])
	}
}

// hashData computes the content identity of a serialized entry.
func hashData(data []byte) common.Hash {
	return common.Hash(blake2b.Sum256(data))
}

package merkle

import (
	"bytes"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/common"
)

// DefaultCacheSize is the number of decoded entries kept in the read
// cache when no explicit size is configured.
const DefaultCacheSize = 16384

// Store reads and writes the content-addressed entry graph on top of
// a Backend. New entries are staged in memory until Persist writes
// everything reachable from a committed root to the backend; entries
// already persisted are never written again, which is what makes
// structural sharing between commits free.
type Store struct {
	db     backend.Backend
	staged map[common.Hash][]byte
	cache  *lru.Cache
}

// NewStore creates a store over the given backend. cacheSize bounds
// the decoded-entry read cache; values below one select
// DefaultCacheSize.
func NewStore(db backend.Backend, cacheSize int) (*Store, error) {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		staged: map[common.Hash][]byte{},
		cache:  cache,
	}, nil
}

// WriteEntry serializes the entry, stages it under its content hash
// and returns the hash. Writing identical content twice yields the
// same hash and is a no-op at the value level.
func (s *Store) WriteEntry(entry Entry) (common.Hash, error) {
	data, err := EncodeEntry(entry)
	if err != nil {
		return common.Hash{}, err
	}
	hash := hashData(data)
	s.staged[hash] = data
	return hash, nil
}

// ReadEntry returns the entry stored under the given hash, staged or
// persisted. A hash with no value reports backend.ErrNotFound, a
// value that does not decode reports ErrCorruptEntry.
func (s *Store) ReadEntry(hash common.Hash) (Entry, error) {
	if data, isStaged := s.staged[hash]; isStaged {
		return DecodeEntry(data)
	}
	if cached, exists := s.cache.Get(hash); exists {
		return cached.(Entry), nil
	}
	data, err := s.db.Get(backend.ToDBKey(backend.EntrySpace, hash[:]).ToBytes())
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s", err, hash)
	}
	entry, err := DecodeEntry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s", err, hash)
	}
	s.cache.Add(hash, entry)
	return entry, nil
}

// ResolvePath walks directory entries from root along the path. It
// returns false when any segment is absent and ErrCorruptEntry when a
// non-terminal segment resolves to a blob.
func (s *Store) ResolvePath(root common.Hash, path []string) (common.Hash, bool, error) {
	current := root
	for _, name := range path {
		dir, err := s.readDirectory(current)
		if err != nil {
			return common.Hash{}, false, err
		}
		child, exists := dir[name]
		if !exists {
			return common.Hash{}, false, nil
		}
		current = child
	}
	return current, true, nil
}

// GetBlob returns the value stored at the path. A path that is absent
// or does not end in a blob reports backend.ErrNotFound.
func (s *Store) GetBlob(root common.Hash, path []string) ([]byte, error) {
	hash, exists, err := s.ResolvePath(root, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: no value at %s", backend.ErrNotFound, pathString(path))
	}
	entry, err := s.ReadEntry(hash)
	if err != nil {
		return nil, err
	}
	blob, isBlob := entry.(Blob)
	if !isBlob {
		return nil, fmt.Errorf("%w: no value at %s", backend.ErrNotFound, pathString(path))
	}
	return bytes.Clone(blob), nil
}

// Mem reports whether a value blob is stored at the path.
func (s *Store) Mem(root common.Hash, path []string) (bool, error) {
	entry, exists, err := s.entryAt(root, path)
	if err != nil || !exists {
		return false, err
	}
	_, isBlob := entry.(Blob)
	return isBlob, nil
}

// DirMem reports whether a directory exists at the path.
func (s *Store) DirMem(root common.Hash, path []string) (bool, error) {
	entry, exists, err := s.entryAt(root, path)
	if err != nil || !exists {
		return false, err
	}
	_, isDir := entry.(Directory)
	return isDir, nil
}

func (s *Store) entryAt(root common.Hash, path []string) (Entry, bool, error) {
	hash, exists, err := s.ResolvePath(root, path)
	if err != nil || !exists {
		return nil, false, err
	}
	entry, err := s.ReadEntry(hash)
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// SetPath stores the value at the path and returns the new root hash.
// Every directory on the path is rewritten copy-on-write, missing
// intermediate directories are created; the old root stays valid.
func (s *Store) SetPath(root common.Hash, path []string, value []byte) (common.Hash, error) {
	if len(path) == 0 {
		return common.Hash{}, fmt.Errorf("empty key path")
	}
	leaf, err := s.WriteEntry(Blob(value))
	if err != nil {
		return common.Hash{}, err
	}
	return s.setLeaf(root, path, leaf)
}

// DeletePath unlinks the entry at the path and returns the new root
// hash. An absent path leaves the tree unchanged and is not an error.
func (s *Store) DeletePath(root common.Hash, path []string) (common.Hash, error) {
	if len(path) == 0 {
		return common.Hash{}, fmt.Errorf("empty key path")
	}
	newRoot, _, err := s.unsetLeaf(root, path)
	return newRoot, err
}

// RemoveRecursivelyPath unlinks the subtree rooted at the path. On
// this entry graph a subtree is dropped by unlinking its hash, so the
// operation shares its implementation with DeletePath; it exists as
// its own operation because the action stream distinguishes the two.
func (s *Store) RemoveRecursivelyPath(root common.Hash, path []string) (common.Hash, error) {
	return s.DeletePath(root, path)
}

// CopyPath links the entry found at fromPath under toPath and returns
// the new root hash. Only the directories on the destination path are
// rewritten; the copied subtree is shared by reference, not
// duplicated.
func (s *Store) CopyPath(root common.Hash, fromPath []string, toPath []string) (common.Hash, error) {
	if len(fromPath) == 0 || len(toPath) == 0 {
		return common.Hash{}, fmt.Errorf("empty key path")
	}
	source, exists, err := s.ResolvePath(root, fromPath)
	if err != nil {
		return common.Hash{}, err
	}
	if !exists {
		return common.Hash{}, fmt.Errorf("%w: no entry at %s", backend.ErrNotFound, pathString(fromPath))
	}
	return s.setLeaf(root, toPath, source)
}

// Persist writes every staged entry reachable from the given root to
// the backend, children before parents, and then drops the staging
// area. Recursion stops at hashes that are already persisted.
func (s *Store) Persist(root common.Hash) error {
	if err := s.persistEntry(root); err != nil {
		return err
	}
	s.staged = map[common.Hash][]byte{}
	return nil
}

func (s *Store) persistEntry(hash common.Hash) error {
	data, isStaged := s.staged[hash]
	if !isStaged {
		return nil
	}
	entry, err := DecodeEntry(data)
	if err != nil {
		return err
	}
	switch e := entry.(type) {
	case Directory:
		for _, child := range e {
			if err := s.persistEntry(child); err != nil {
				return err
			}
		}
	case Commit:
		if err := s.persistEntry(e.Root); err != nil {
			return err
		}
	}
	if err := s.db.Put(backend.ToDBKey(backend.EntrySpace, hash[:]).ToBytes(), data); err != nil {
		return err
	}
	delete(s.staged, hash)
	return nil
}

// Discard drops all staged entries, used when a checkout abandons the
// in-flight mutation state.
func (s *Store) Discard() {
	s.staged = map[common.Hash][]byte{}
}

// setLeaf rewrites the directory chain along the path so that its end
// links the given entry hash, creating intermediate directories as
// needed.
func (s *Store) setLeaf(root common.Hash, path []string, leaf common.Hash) (common.Hash, error) {
	dir, err := s.readDirectory(root)
	if err != nil {
		return common.Hash{}, err
	}
	name := path[0]
	if len(path) == 1 {
		return s.WriteEntry(withChild(dir, name, leaf))
	}
	var newChild common.Hash
	if child, exists := dir[name]; exists {
		newChild, err = s.setLeaf(child, path[1:], leaf)
	} else {
		newChild, err = s.buildChain(path[1:], leaf)
	}
	if err != nil {
		return common.Hash{}, err
	}
	return s.WriteEntry(withChild(dir, name, newChild))
}

// buildChain creates the directory chain for a path that did not
// exist yet, bottom up.
func (s *Store) buildChain(path []string, leaf common.Hash) (common.Hash, error) {
	if len(path) == 0 {
		return leaf, nil
	}
	child, err := s.buildChain(path[1:], leaf)
	if err != nil {
		return common.Hash{}, err
	}
	return s.WriteEntry(Directory{path[0]: child})
}

// unsetLeaf removes the link at the path, rewriting the directories
// above it. The boolean reports whether anything changed.
func (s *Store) unsetLeaf(root common.Hash, path []string) (common.Hash, bool, error) {
	dir, err := s.readDirectory(root)
	if err != nil {
		return common.Hash{}, false, err
	}
	name := path[0]
	child, exists := dir[name]
	if !exists {
		return root, false, nil
	}
	if len(path) == 1 {
		copied := make(Directory, len(dir))
		for childName, hash := range dir {
			if childName != name {
				copied[childName] = hash
			}
		}
		newRoot, err := s.WriteEntry(copied)
		if err != nil {
			return common.Hash{}, false, err
		}
		return newRoot, true, nil
	}
	newChild, changed, err := s.unsetLeaf(child, path[1:])
	if err != nil || !changed {
		return root, changed, err
	}
	newRoot, err := s.WriteEntry(withChild(dir, name, newChild))
	if err != nil {
		return common.Hash{}, false, err
	}
	return newRoot, true, nil
}

func (s *Store) readDirectory(hash common.Hash) (Directory, error) {
	entry, err := s.ReadEntry(hash)
	if err != nil {
		return nil, err
	}
	dir, isDir := entry.(Directory)
	if !isDir {
		return nil, fmt.Errorf("%w: expected directory at %s", ErrCorruptEntry, hash)
	}
	return dir, nil
}

// withChild copies the directory with the given child set, leaving
// the original untouched.
func withChild(dir Directory, name string, child common.Hash) Directory {
	copied := make(Directory, len(dir)+1)
	for childName, hash := range dir {
		copied[childName] = hash
	}
	copied[name] = child
	return copied
}

func pathString(path []string) string {
	return "/" + strings.Join(path, "/")
}

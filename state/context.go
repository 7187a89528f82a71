// Package state implements the context engine: the stateful staging
// area that exposes get/set/copy/delete/commit/checkout operations
// against the Merkle entry store, tracks the currently checked-out
// root and the staged root of every tree id, and maintains the
// block-to-context index.
package state

import (
	"errors"
	"fmt"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/common"
	"github.com/Fidelio-foundation/Fidelio/merkle"
)

const (
	// ErrUnknownContextHash is returned by Checkout when no committed
	// context matches the hash.
	ErrUnknownContextHash = common.ConstError("unknown context hash")
	// ErrUnknownTreeId is returned when an operation selects a tree
	// id that no staged root is registered under.
	ErrUnknownTreeId = common.ConstError("unknown tree id")
	// ErrInvalidParentContext is returned when an action declares a
	// parent context the current root does not descend from.
	ErrInvalidParentContext = common.ConstError("invalid parent context")
)

var (
	lastCommitKey    = []byte("last_commit")
	headBlockKey     = []byte("head_block")
	appliedBlocksKey = []byte("blocks_applied")
)

// Context is the engine state of one replay worker. It owns the
// notion of the current root exclusively and is not safe for
// concurrent use; concurrent readers of committed state must go
// through their own read-only view of the backend.
type Context struct {
	db    backend.Backend
	store *merkle.Store

	trees       map[uint64]common.Hash
	currentRoot common.Hash
	currentTree uint64
	checkedOut  *common.Hash
	lastCommit  *common.Hash
	blocks      uint64
}

// NewContext creates an engine over the given backend. Between
// process runs the last commit hash and the applied block count are
// recovered from the backend; the working root always starts at the
// empty tree until the first Checkout.
func NewContext(db backend.Backend, cacheSize int) (*Context, error) {
	store, err := merkle.NewStore(db, cacheSize)
	if err != nil {
		return nil, err
	}
	emptyRoot, err := store.WriteEntry(merkle.Directory{})
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		db:    db,
		store: store,
	}
	ctx.resetTrees(emptyRoot)

	value, err := db.Get(backend.ToDBKey(backend.MetaSpace, lastCommitKey).ToBytes())
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		hash := common.HashSerializer{}.FromBytes(value)
		ctx.lastCommit = &hash
	}

	value, err = db.Get(backend.ToDBKey(backend.MetaSpace, appliedBlocksKey).ToBytes())
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		ctx.blocks = common.Uint64Serializer{}.FromBytes(value)
	}
	return ctx, nil
}

func (c *Context) resetTrees(root common.Hash) {
	c.trees = map[uint64]common.Hash{0: root}
	c.currentRoot = root
	c.currentTree = 0
}

// Checkout loads the committed context identified by the hash as the
// current root, discarding all staged state.
func (c *Context) Checkout(contextHash common.Hash) error {
	entry, err := c.store.ReadEntry(contextHash)
	if errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownContextHash, contextHash)
	}
	if err != nil {
		return err
	}
	commit, isCommit := entry.(merkle.Commit)
	if !isCommit {
		return fmt.Errorf("%w: %s does not name a commit", ErrUnknownContextHash, contextHash)
	}
	c.store.Discard()
	hash := contextHash
	c.checkedOut = &hash
	c.resetTrees(commit.Root)
	return nil
}

// SetMerkleRoot selects the staged root registered under the tree id
// as the one subsequent operations apply to.
func (c *Context) SetMerkleRoot(treeID uint64) error {
	root, exists := c.trees[treeID]
	if !exists {
		return fmt.Errorf("%w: %d", ErrUnknownTreeId, treeID)
	}
	c.currentRoot = root
	c.currentTree = treeID
	return nil
}

// GetMerkleRoot returns the hash of the current staged root.
func (c *Context) GetMerkleRoot() common.Hash {
	return c.currentRoot
}

// GetKey returns the value stored at the key path in the current
// staged root. A missing value reports backend.ErrNotFound.
func (c *Context) GetKey(key []string) ([]byte, error) {
	return c.store.GetBlob(c.currentRoot, key)
}

// Mem reports whether a value exists at the key path.
func (c *Context) Mem(key []string) (bool, error) {
	return c.store.Mem(c.currentRoot, key)
}

// DirMem reports whether a directory exists at the key path.
func (c *Context) DirMem(key []string) (bool, error) {
	return c.store.DirMem(c.currentRoot, key)
}

// Set stores the value at the key path and registers the produced
// root under the new tree id.
func (c *Context) Set(parent *common.Hash, newTreeID uint64, key []string, value []byte) error {
	if err := c.verifyParent(parent); err != nil {
		return err
	}
	newRoot, err := c.store.SetPath(c.currentRoot, key, value)
	if err != nil {
		return err
	}
	c.stageTree(newTreeID, newRoot)
	return nil
}

// CopyToDiff links the subtree at fromKey under toKey and registers
// the produced root under the new tree id.
func (c *Context) CopyToDiff(parent *common.Hash, newTreeID uint64, fromKey []string, toKey []string) error {
	if err := c.verifyParent(parent); err != nil {
		return err
	}
	newRoot, err := c.store.CopyPath(c.currentRoot, fromKey, toKey)
	if err != nil {
		return err
	}
	c.stageTree(newTreeID, newRoot)
	return nil
}

// DeleteToDiff unlinks the value at the key path and registers the
// produced root under the new tree id.
func (c *Context) DeleteToDiff(parent *common.Hash, newTreeID uint64, key []string) error {
	if err := c.verifyParent(parent); err != nil {
		return err
	}
	newRoot, err := c.store.DeletePath(c.currentRoot, key)
	if err != nil {
		return err
	}
	c.stageTree(newTreeID, newRoot)
	return nil
}

// RemoveRecursivelyToDiff unlinks the subtree at the key path and
// registers the produced root under the new tree id.
func (c *Context) RemoveRecursivelyToDiff(parent *common.Hash, newTreeID uint64, key []string) error {
	if err := c.verifyParent(parent); err != nil {
		return err
	}
	newRoot, err := c.store.RemoveRecursivelyPath(c.currentRoot, key)
	if err != nil {
		return err
	}
	c.stageTree(newTreeID, newRoot)
	return nil
}

// Commit finalizes the current staged root as a new committed
// context: the commit entry and the graph below it become durable,
// the block (when given) is indexed, and the tree ids reset. The
// returned hash is the identity of the new context.
func (c *Context) Commit(blockHash *common.Hash, parent *common.Hash, author string, message string, date uint64) (common.Hash, error) {
	if err := c.verifyParent(parent); err != nil {
		return common.Hash{}, err
	}
	contextHash, err := c.store.WriteEntry(merkle.Commit{
		Root:    c.currentRoot,
		Parent:  parent,
		Time:    date,
		Author:  author,
		Message: message,
	})
	if err != nil {
		return common.Hash{}, err
	}
	if err := c.store.Persist(contextHash); err != nil {
		return common.Hash{}, err
	}

	serializer := common.HashSerializer{}
	if blockHash != nil {
		blockKey := backend.ToDBKey(backend.BlockSpace, blockHash[:]).ToBytes()
		if err := c.db.Put(blockKey, serializer.ToBytes(contextHash)); err != nil {
			return common.Hash{}, err
		}
		headKey := backend.ToDBKey(backend.MetaSpace, headBlockKey).ToBytes()
		if err := c.db.Put(headKey, serializer.ToBytes(*blockHash)); err != nil {
			return common.Hash{}, err
		}
	}
	lastKey := backend.ToDBKey(backend.MetaSpace, lastCommitKey).ToBytes()
	if err := c.db.Put(lastKey, serializer.ToBytes(contextHash)); err != nil {
		return common.Hash{}, err
	}

	hash := contextHash
	c.lastCommit = &hash
	c.checkedOut = &hash
	c.resetTrees(c.currentRoot)
	return contextHash, nil
}

// BlockApplied is a housekeeping hook invoked once per applied block.
// It has no effect on the tree.
func (c *Context) BlockApplied() error {
	c.blocks++
	key := backend.ToDBKey(backend.MetaSpace, appliedBlocksKey).ToBytes()
	return c.db.Put(key, common.Uint64Serializer{}.ToBytes(c.blocks))
}

// CycleStarted is a housekeeping hook invoked at cycle boundaries. It
// flushes the backend and has no effect on the tree.
func (c *Context) CycleStarted() error {
	return c.db.Flush()
}

// GetLastCommitHash returns the most recently committed context hash,
// or false if no commit is known.
func (c *Context) GetLastCommitHash() (common.Hash, bool) {
	if c.lastCommit == nil {
		return common.Hash{}, false
	}
	return *c.lastCommit, true
}

// AppliedBlocks returns the number of blocks applied over the life of
// the stored context.
func (c *Context) AppliedBlocks() uint64 {
	return c.blocks
}

// BlockContextHash returns the context hash produced by applying the
// given block, or false if the block is not indexed.
func (c *Context) BlockContextHash(blockHash common.Hash) (common.Hash, bool, error) {
	value, err := c.db.Get(backend.ToDBKey(backend.BlockSpace, blockHash[:]).ToBytes())
	if errors.Is(err, backend.ErrNotFound) {
		return common.Hash{}, false, nil
	}
	if err != nil {
		return common.Hash{}, false, err
	}
	return common.HashSerializer{}.FromBytes(value), true, nil
}

// HeadBlockHash returns the most recently committed block, or false
// if no block commit happened yet.
func (c *Context) HeadBlockHash() (common.Hash, bool, error) {
	value, err := c.db.Get(backend.ToDBKey(backend.MetaSpace, headBlockKey).ToBytes())
	if errors.Is(err, backend.ErrNotFound) {
		return common.Hash{}, false, nil
	}
	if err != nil {
		return common.Hash{}, false, err
	}
	return common.HashSerializer{}.FromBytes(value), true, nil
}

// Flush forces buffered backend writes out.
func (c *Context) Flush() error {
	return c.db.Flush()
}

// Close flushes and closes the underlying backend.
func (c *Context) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	return c.db.Close()
}

func (c *Context) stageTree(newTreeID uint64, newRoot common.Hash) {
	c.trees[newTreeID] = newRoot
	c.currentRoot = newRoot
	c.currentTree = newTreeID
}

// verifyParent checks a declared parent context hash against the
// lineage the current root descends from.
func (c *Context) verifyParent(parent *common.Hash) error {
	if parent == nil {
		return nil
	}
	if c.checkedOut == nil {
		return fmt.Errorf("%w: action expects parent %s, no context checked out", ErrInvalidParentContext, parent)
	}
	if *c.checkedOut != *parent {
		return fmt.Errorf("%w: action expects parent %s, current lineage is %s", ErrInvalidParentContext, parent, c.checkedOut)
	}
	return nil
}

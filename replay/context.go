package replay

import (
	"github.com/Fidelio-foundation/Fidelio/common"
)

//go:generate mockgen -source context.go -destination mock_context.go -package replay Context

// Context is the engine-side surface the replayer drives. It is
// implemented by the state package's context engine; the mock is used
// to test dispatch in isolation.
type Context interface {
	// Checkout loads the committed context identified by the hash as
	// the current root.
	Checkout(contextHash common.Hash) error

	// SetMerkleRoot selects the staged root subsequent operations
	// apply to.
	SetMerkleRoot(treeID uint64) error

	// GetMerkleRoot returns the hash of the current staged root.
	GetMerkleRoot() common.Hash

	// GetKey returns the value stored at the key path.
	GetKey(key []string) ([]byte, error)

	// Mem reports whether a value exists at the key path.
	Mem(key []string) (bool, error)

	// DirMem reports whether a directory exists at the key path.
	DirMem(key []string) (bool, error)

	// Set stores the value at the key path under the new tree id.
	Set(parent *common.Hash, newTreeID uint64, key []string, value []byte) error

	// CopyToDiff links the subtree at fromKey under toKey under the
	// new tree id.
	CopyToDiff(parent *common.Hash, newTreeID uint64, fromKey []string, toKey []string) error

	// DeleteToDiff unlinks the value at the key path under the new
	// tree id.
	DeleteToDiff(parent *common.Hash, newTreeID uint64, key []string) error

	// RemoveRecursivelyToDiff unlinks the subtree at the key path
	// under the new tree id.
	RemoveRecursivelyToDiff(parent *common.Hash, newTreeID uint64, key []string) error

	// Commit finalizes the current staged root as a new committed
	// context and returns its hash.
	Commit(blockHash *common.Hash, parent *common.Hash, author string, message string, date uint64) (common.Hash, error)

	// BlockApplied is the per-block housekeeping hook.
	BlockApplied() error

	// CycleStarted is the per-cycle housekeeping hook.
	CycleStarted() error

	// GetLastCommitHash returns the most recent committed context
	// hash, or false if no commit is known.
	GetLastCommitHash() (common.Hash, bool)
}

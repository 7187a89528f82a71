// Package replay consumes the ordered stream of context actions an
// external protocol process produces and drives the context engine
// accordingly, verifying every externally declared post-state hash
// against the locally computed one.
package replay

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Fidelio-foundation/Fidelio/common"
)

// Kind tags one context action variant.
type Kind string

const (
	KindGet               Kind = "get"
	KindMem               Kind = "mem"
	KindDirMem            Kind = "dir_mem"
	KindSet               Kind = "set"
	KindCopy              Kind = "copy"
	KindDelete            Kind = "delete"
	KindRemoveRecursively Kind = "remove_recursively"
	KindCommit            Kind = "commit"
	KindCheckout          Kind = "checkout"
	KindFold              Kind = "fold"
	KindShutdown          Kind = "shutdown"
)

// Action is one recorded context mutation or query event. Field
// presence depends on the kind; optional hashes are nil when the
// producer declared none.
type Action struct {
	Kind      Kind   `json:"action"`
	TreeID    uint64 `json:"tree_id,omitempty"`
	NewTreeID uint64 `json:"new_tree_id,omitempty"`

	Key     []string      `json:"key,omitempty"`
	FromKey []string      `json:"from_key,omitempty"`
	ToKey   []string      `json:"to_key,omitempty"`
	Value   hexutil.Bytes `json:"value,omitempty"`

	// ContextHash is the parent context a mutation was recorded
	// against; for checkout it names the context to load.
	ContextHash *common.Hash `json:"context_hash,omitempty"`
	// NewTreeHash is the producer's declared post-mutation root.
	NewTreeHash *common.Hash `json:"new_tree_hash,omitempty"`

	ParentContextHash *common.Hash `json:"parent_context_hash,omitempty"`
	NewContextHash    *common.Hash `json:"new_context_hash,omitempty"`
	BlockHash         *common.Hash `json:"block_hash,omitempty"`
	Author            string       `json:"author,omitempty"`
	Message           string       `json:"message,omitempty"`
	Date              uint64       `json:"date,omitempty"`
}

// HasTreeID reports whether the variant carries a tree id selecting
// the staged root it applies to. Checkout and shutdown do not.
func (a *Action) HasTreeID() bool {
	switch a.Kind {
	case KindCheckout, KindShutdown:
		return false
	}
	return true
}

// DeclaredTreeHash returns the post-mutation root hash the producer
// declared for this action, or nil. Only the four mutating variants
// ever declare one.
func (a *Action) DeclaredTreeHash() *common.Hash {
	switch a.Kind {
	case KindSet, KindCopy, KindDelete, KindRemoveRecursively:
		return a.NewTreeHash
	}
	return nil
}

// Validate checks that the fields required by the kind are present.
func (a *Action) Validate() error {
	switch a.Kind {
	case KindGet, KindMem, KindDirMem, KindSet, KindDelete, KindRemoveRecursively:
		if len(a.Key) == 0 {
			return fmt.Errorf("%s action without a key", a.Kind)
		}
	case KindCopy:
		if len(a.FromKey) == 0 || len(a.ToKey) == 0 {
			return fmt.Errorf("copy action without from_key or to_key")
		}
	case KindCommit:
		if a.BlockHash != nil && a.NewContextHash == nil {
			return fmt.Errorf("commit action without new_context_hash")
		}
	case KindCheckout:
		if a.ContextHash == nil {
			return fmt.Errorf("checkout action without context_hash")
		}
	case KindFold, KindShutdown:
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	return nil
}

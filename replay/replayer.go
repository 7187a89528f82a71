package replay

import (
	"fmt"

	"github.com/Fidelio-foundation/Fidelio/common"
)

// ErrIntegrityViolation is returned when a locally computed hash does
// not match the hash the producer declared. It marks a divergence
// between the replaying node and the external protocol process and
// must never be tolerated; callers terminate the process on it.
const ErrIntegrityViolation = common.ConstError("integrity violation")

// DefaultCycleLength is the number of processed events per
// housekeeping cycle when none is configured. The cadence follows the
// protocol-level cycle length and is a heuristic, not an invariant.
const DefaultCycleLength = 4096

// Replayer applies one ordered action stream to a context engine. It
// is not safe for concurrent use; actions must be applied strictly in
// arrival order because hash verification and tree id staging are
// sequence-sensitive. One replayer serves one connection.
type Replayer struct {
	ctx         Context
	cycleLength uint64
	events      uint64
}

// NewReplayer creates a replayer over the engine. cycleLength values
// below one select DefaultCycleLength.
func NewReplayer(ctx Context, cycleLength uint64) *Replayer {
	if cycleLength < 1 {
		cycleLength = DefaultCycleLength
	}
	return &Replayer{
		ctx:         ctx,
		cycleLength: cycleLength,
	}
}

// Events returns the number of actions applied so far.
func (r *Replayer) Events() uint64 {
	return r.events
}

// Apply dispatches one action against the engine. Mutating actions
// that declare a post-state hash are verified against the live root;
// a mismatch is reported as ErrIntegrityViolation and the stream must
// not be continued after it.
func (r *Replayer) Apply(action *Action) error {
	r.events++

	if action.HasTreeID() {
		if err := r.ctx.SetMerkleRoot(action.TreeID); err != nil {
			return err
		}
	}

	var err error
	switch action.Kind {
	case KindGet:
		_, err = r.ctx.GetKey(action.Key)
	case KindMem:
		_, err = r.ctx.Mem(action.Key)
	case KindDirMem:
		_, err = r.ctx.DirMem(action.Key)
	case KindSet:
		err = r.ctx.Set(action.ContextHash, action.NewTreeID, action.Key, action.Value)
	case KindCopy:
		err = r.ctx.CopyToDiff(action.ContextHash, action.NewTreeID, action.FromKey, action.ToKey)
	case KindDelete:
		err = r.ctx.DeleteToDiff(action.ContextHash, action.NewTreeID, action.Key)
	case KindRemoveRecursively:
		err = r.ctx.RemoveRecursivelyToDiff(action.ContextHash, action.NewTreeID, action.Key)
	case KindCommit:
		err = r.applyCommit(action)
	case KindCheckout:
		err = r.ctx.Checkout(*action.ContextHash)
	case KindFold:
		// accepted placeholder with no mutation semantics yet
	case KindShutdown:
		// transport control, handled by the listener
	default:
		err = fmt.Errorf("unknown action kind %q", action.Kind)
	}
	if err != nil {
		return err
	}

	if declared := action.DeclaredTreeHash(); declared != nil {
		if root := r.ctx.GetMerkleRoot(); root != *declared {
			return fmt.Errorf("%w: %s action produced root %s, producer declared %s",
				ErrIntegrityViolation, action.Kind, root, declared)
		}
	}
	return nil
}

// applyCommit commits the staged root and verifies the produced
// context hash. A commit action without a block hash performs no
// engine commit; whether that is a forward-compatibility placeholder
// or a coverage gap of the producer is an open question, the behavior
// of ignoring it is preserved. Housekeeping hooks fire either way.
func (r *Replayer) applyCommit(action *Action) error {
	if action.BlockHash != nil {
		contextHash, err := r.ctx.Commit(action.BlockHash, action.ParentContextHash,
			action.Author, action.Message, action.Date)
		if err != nil {
			return err
		}
		if contextHash != *action.NewContextHash {
			return fmt.Errorf("%w: block %s committed context %s, producer declared %s",
				ErrIntegrityViolation, action.BlockHash, contextHash, action.NewContextHash)
		}
	}
	if err := r.ctx.BlockApplied(); err != nil {
		return err
	}
	if r.events%r.cycleLength == 0 {
		return r.ctx.CycleStarted()
	}
	return nil
}

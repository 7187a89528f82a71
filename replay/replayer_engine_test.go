package replay_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Fidelio-foundation/Fidelio/backend"
	"github.com/Fidelio-foundation/Fidelio/backend/memory"
	"github.com/Fidelio-foundation/Fidelio/backend/ordered"
	"github.com/Fidelio-foundation/Fidelio/common"
	"github.com/Fidelio-foundation/Fidelio/replay"
	"github.com/Fidelio-foundation/Fidelio/state"
)

func initEngine(t *testing.T, db backend.Backend) *state.Context {
	t.Helper()
	ctx, err := state.NewContext(db, 0)
	if err != nil {
		t.Fatalf("failed to create context; %s", err)
	}
	return ctx
}

func TestReplayer_WrongDeclaredHashIsFatalOnRealEngine(t *testing.T) {
	ctx := initEngine(t, memory.NewBackend())
	replayer := replay.NewReplayer(ctx, 0)

	bogus := common.Hash{0xbd}
	action := &replay.Action{
		Kind:        replay.KindSet,
		NewTreeID:   1,
		Key:         []string{"a", "b"},
		Value:       []byte{1, 2, 3},
		NewTreeHash: &bogus,
	}
	if err := replayer.Apply(action); !errors.Is(err, replay.ErrIntegrityViolation) {
		t.Errorf("expected ErrIntegrityViolation, got %v", err)
	}
}

func TestReplayer_SetThenGetScenario(t *testing.T) {
	ctx := initEngine(t, memory.NewBackend())
	replayer := replay.NewReplayer(ctx, 0)

	set := &replay.Action{
		Kind:      replay.KindSet,
		TreeID:    0,
		NewTreeID: 1,
		Key:       []string{"a", "b"},
		Value:     []byte{1, 2, 3},
	}
	if err := replayer.Apply(set); err != nil {
		t.Fatalf("failed to apply set action; %s", err)
	}
	get := &replay.Action{Kind: replay.KindGet, TreeID: 1, Key: []string{"a", "b"}}
	if err := replayer.Apply(get); err != nil {
		t.Fatalf("failed to apply get action; %s", err)
	}
	value, err := ctx.GetKey([]string{"a", "b"})
	if err != nil {
		t.Fatalf("failed to read value; %s", err)
	}
	if want, got := []byte{1, 2, 3}, value; !bytes.Equal(want, got) {
		t.Errorf("unexpected value, wanted %x, got %x", want, got)
	}
}

// computeExpectedCommits drives the two-block mutation sequence
// against a bare engine, producing the context hashes an honest
// producer would declare on the wire.
func computeExpectedCommits(t *testing.T) []common.Hash {
	t.Helper()
	ctx := initEngine(t, memory.NewBackend())

	block1, block2 := common.Hash{0xb1}, common.Hash{0xb2}
	if err := ctx.Set(nil, 1, []string{"data", "rolls", "1"}, []byte{0x01}); err != nil {
		t.Fatalf("failed to set value; %s", err)
	}
	if err := ctx.Set(nil, 2, []string{"data", "contracts", "alpha"}, []byte{0x02}); err != nil {
		t.Fatalf("failed to set value; %s", err)
	}
	first, err := ctx.Commit(&block1, nil, "baker-a", "block 1", 1000)
	if err != nil {
		t.Fatalf("failed to commit; %s", err)
	}
	if err := ctx.CopyToDiff(&first, 1, []string{"data", "contracts"}, []string{"data", "archive"}); err != nil {
		t.Fatalf("failed to copy; %s", err)
	}
	if err := ctx.RemoveRecursivelyToDiff(&first, 2, []string{"data", "rolls"}); err != nil {
		t.Fatalf("failed to remove; %s", err)
	}
	second, err := ctx.Commit(&block2, &first, "baker-b", "block 2", 2000)
	if err != nil {
		t.Fatalf("failed to commit; %s", err)
	}
	return []common.Hash{first, second}
}

// replayStream feeds the matching action stream, declared hashes
// included, through a replayer over the given backend and returns the
// commit hashes the engine produced.
func replayStream(t *testing.T, db backend.Backend, declared []common.Hash) []common.Hash {
	t.Helper()
	ctx := initEngine(t, db)
	replayer := replay.NewReplayer(ctx, 0)

	block1, block2 := common.Hash{0xb1}, common.Hash{0xb2}
	stream := []*replay.Action{
		{Kind: replay.KindSet, TreeID: 0, NewTreeID: 1, Key: []string{"data", "rolls", "1"}, Value: []byte{0x01}},
		{Kind: replay.KindSet, TreeID: 1, NewTreeID: 2, Key: []string{"data", "contracts", "alpha"}, Value: []byte{0x02}},
		{Kind: replay.KindCommit, TreeID: 2, BlockHash: &block1, NewContextHash: &declared[0], Author: "baker-a", Message: "block 1", Date: 1000},
		{Kind: replay.KindCopy, TreeID: 0, NewTreeID: 1, FromKey: []string{"data", "contracts"}, ToKey: []string{"data", "archive"}},
		{Kind: replay.KindRemoveRecursively, TreeID: 1, NewTreeID: 2, Key: []string{"data", "rolls"}, ContextHash: &declared[0]},
		{Kind: replay.KindCommit, TreeID: 2, ParentContextHash: &declared[0], BlockHash: &block2, NewContextHash: &declared[1], Author: "baker-b", Message: "block 2", Date: 2000},
	}

	var hashes []common.Hash
	for i, action := range stream {
		if err := replayer.Apply(action); err != nil {
			t.Fatalf("failed to apply action %d (%s); %s", i, action.Kind, err)
		}
		if action.Kind == replay.KindCommit {
			hash, exists := ctx.GetLastCommitHash()
			if !exists {
				t.Fatalf("no commit hash after commit action %d", i)
			}
			hashes = append(hashes, hash)
		}
	}
	return hashes
}

func TestReplayer_IdenticalStreamsYieldIdenticalCommits(t *testing.T) {
	expected := computeExpectedCommits(t)
	engines := map[string]func() backend.Backend{
		"memory":  func() backend.Backend { return memory.NewBackend() },
		"ordered": func() backend.Backend { return ordered.NewBackend() },
	}
	for name, init := range engines {
		t.Run(name, func(t *testing.T) {
			hashes := replayStream(t, init(), expected)
			for i := range expected {
				if hashes[i] != expected[i] {
					t.Errorf("commit %d diverged, wanted %s, got %s", i, expected[i], hashes[i])
				}
			}
		})
	}
}

package listener

import (
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Fidelio-foundation/Fidelio/backend/memory"
	"github.com/Fidelio-foundation/Fidelio/common"
	"github.com/Fidelio-foundation/Fidelio/replay"
	"github.com/Fidelio-foundation/Fidelio/replay/recorder"
	"github.com/Fidelio-foundation/Fidelio/state"
)

// capture is a test recorder remembering every action it sees.
type capture struct {
	actions []*replay.Action
}

func (c *capture) Record(action *replay.Action) error {
	c.actions = append(c.actions, action)
	return nil
}

func (c *capture) Close() error { return nil }

// failing is a test recorder that always errs.
type failing struct{}

func (failing) Record(*replay.Action) error { return fmt.Errorf("recorder broke") }
func (failing) Close() error                { return nil }

func initEngine(t *testing.T) *state.Context {
	t.Helper()
	ctx, err := state.NewContext(memory.NewBackend(), 0)
	if err != nil {
		t.Fatalf("failed to create context; %s", err)
	}
	return ctx
}

func startListener(t *testing.T, ctx replay.Context, recorders ...recorder.Recorder) (*Listener, string) {
	t.Helper()
	socket := filepath.Join(t.TempDir(), "events.sock")
	cfg := Config{Network: "unix", Address: socket, AcceptTimeout: 200 * time.Millisecond}
	l := New(zaptest.NewLogger(t), cfg, ctx, recorders...)
	if err := l.Start(); err != nil {
		t.Fatalf("failed to start listener; %s", err)
	}
	return l, socket
}

func stopListener(t *testing.T, l *Listener) {
	t.Helper()
	l.RequestShutdown()
	l.Join()
}

func dial(t *testing.T, socket string) (net.Conn, *replay.Encoder) {
	t.Helper()
	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", socket)
		if err == nil {
			return conn, replay.NewEncoder(conn)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("failed to connect to listener; %s", err)
	return nil, nil
}

func send(t *testing.T, enc *replay.Encoder, actions ...*replay.Action) {
	t.Helper()
	for _, action := range actions {
		if err := enc.Encode(action); err != nil {
			t.Fatalf("failed to send %s action; %s", action.Kind, err)
		}
	}
}

// expectedCommit computes the context hash an honest producer would
// declare for the single-set block the tests replay.
func expectedCommit(t *testing.T, block common.Hash) common.Hash {
	t.Helper()
	scratch := initEngine(t)
	if err := scratch.Set(nil, 1, []string{"a", "b"}, []byte{1, 2, 3}); err != nil {
		t.Fatalf("failed to set value; %s", err)
	}
	hash, err := scratch.Commit(&block, nil, "baker", "lvl 1", 42)
	if err != nil {
		t.Fatalf("failed to commit; %s", err)
	}
	return hash
}

func TestListener_ReplaysStreamAndRecords(t *testing.T) {
	engine := initEngine(t)
	recorded := &capture{}
	l, socket := startListener(t, engine, recorded)

	block := common.Hash{0xb1}
	declared := expectedCommit(t, block)

	conn, enc := dial(t, socket)
	send(t, enc,
		&replay.Action{Kind: replay.KindSet, TreeID: 0, NewTreeID: 1, Key: []string{"a", "b"}, Value: []byte{1, 2, 3}},
		&replay.Action{Kind: replay.KindCommit, TreeID: 1, BlockHash: &block, NewContextHash: &declared, Author: "baker", Message: "lvl 1", Date: 42},
	)
	conn.Close()
	stopListener(t, l)

	last, exists := engine.GetLastCommitHash()
	if !exists || last != declared {
		t.Errorf("replay did not produce the declared commit, wanted %s, got %s (exists=%t)", declared, last, exists)
	}
	if want, got := 2, len(recorded.actions); want != got {
		t.Errorf("unexpected recorded action count, wanted %d, got %d", want, got)
	}
}

func TestListener_ShutdownActionAllowsReconnect(t *testing.T) {
	engine := initEngine(t)
	l, socket := startListener(t, engine)

	conn, enc := dial(t, socket)
	send(t, enc,
		&replay.Action{Kind: replay.KindSet, TreeID: 0, NewTreeID: 1, Key: []string{"first"}, Value: []byte{1}},
		&replay.Action{Kind: replay.KindShutdown},
	)
	conn.Close()

	// the producer restarted; the listener must accept a second
	// connection and resume on the same engine state
	conn, enc = dial(t, socket)
	send(t, enc,
		&replay.Action{Kind: replay.KindSet, TreeID: 1, NewTreeID: 2, Key: []string{"second"}, Value: []byte{2}},
	)
	conn.Close()
	stopListener(t, l)

	for _, key := range []string{"first", "second"} {
		if exists, err := engine.Mem([]string{key}); err != nil || !exists {
			t.Errorf("value %q lost across reconnect, exists=%t err=%v", key, exists, err)
		}
	}
}

func TestListener_RecorderFailureDoesNotAbortReplay(t *testing.T) {
	engine := initEngine(t)
	recorded := &capture{}
	socket := filepath.Join(t.TempDir(), "events.sock")
	cfg := Config{Network: "unix", Address: socket, AcceptTimeout: 200 * time.Millisecond}
	l := New(zaptest.NewLogger(t), cfg, engine, failing{}, recorded)
	if err := l.Start(); err != nil {
		t.Fatalf("failed to start listener; %s", err)
	}

	conn, enc := dial(t, socket)
	send(t, enc,
		&replay.Action{Kind: replay.KindSet, TreeID: 0, NewTreeID: 1, Key: []string{"a"}, Value: []byte{1}},
	)
	conn.Close()
	stopListener(t, l)

	if exists, err := engine.Mem([]string{"a"}); err != nil || !exists {
		t.Errorf("replay aborted by failing recorder, exists=%t err=%v", exists, err)
	}
	if want, got := 1, len(recorded.actions); want != got {
		t.Errorf("later recorders skipped, wanted %d actions, got %d", want, got)
	}
}

func TestListener_IntegrityViolationIsFatal(t *testing.T) {
	engine := initEngine(t)
	socket := filepath.Join(t.TempDir(), "events.sock")
	cfg := Config{Network: "unix", Address: socket, AcceptTimeout: 200 * time.Millisecond}
	l := New(zaptest.NewLogger(t), cfg, engine)

	fatal := make(chan string, 1)
	l.fatal = func(msg string, fields ...zap.Field) {
		select {
		case fatal <- msg:
		default:
		}
	}
	if err := l.Start(); err != nil {
		t.Fatalf("failed to start listener; %s", err)
	}

	bogus := common.Hash{0xbd}
	conn, enc := dial(t, socket)
	send(t, enc,
		&replay.Action{Kind: replay.KindSet, TreeID: 0, NewTreeID: 1, Key: []string{"a"}, Value: []byte{1}, NewTreeHash: &bogus},
	)

	select {
	case <-fatal:
	case <-time.After(5 * time.Second):
		t.Errorf("integrity violation did not reach the fatal path")
	}
	conn.Close()
	stopListener(t, l)
}

func TestListener_ShutdownIsObservedWithoutConnection(t *testing.T) {
	l, _ := startListener(t, initEngine(t))

	done := make(chan struct{})
	go func() {
		stopListener(t, l)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Errorf("listener did not shut down within the accept timeout")
	}
}

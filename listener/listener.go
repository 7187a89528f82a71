// Package listener owns the IPC server socket the external protocol
// process connects to and the single worker thread that replays the
// action stream it sends. Shutdown is cooperative: the worker checks
// a shared flag at the accept and receive stages, so shutdown latency
// is bounded by one accept timeout or one in-flight action, never
// immediate. An in-progress blocking receive is only unblocked by the
// peer disconnecting; the external process's cooperation is assumed.
package listener

import (
	"errors"
	"io"
	"net"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Fidelio-foundation/Fidelio/replay"
	"github.com/Fidelio-foundation/Fidelio/replay/recorder"
)

const (
	// DefaultAcceptTimeout bounds one blocking accept, and with it the
	// shutdown latency while no producer is connected.
	DefaultAcceptTimeout = 3 * time.Second

	// heartbeatEvery is the per-connection action cadence of the
	// progress log line.
	heartbeatEvery = 100
)

// Config carries the listener's transport parameters.
type Config struct {
	// Network is "unix" or "tcp".
	Network string
	// Address is the socket path or host:port to listen on.
	Address string
	// AcceptTimeout bounds one blocking accept; values below one
	// select DefaultAcceptTimeout.
	AcceptTimeout time.Duration
	// CycleLength is the housekeeping cadence in processed events;
	// values below one select the replay default.
	CycleLength uint64
}

type deadlineListener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// Listener accepts one producer connection at a time and feeds its
// action stream through a replayer, fanning every action out to the
// registered recorders first.
type Listener struct {
	log       *zap.Logger
	cfg       Config
	ctx       replay.Context
	recorders []recorder.Recorder

	run    *atomic.Bool
	socket deadlineListener
	done   chan struct{}

	// fatal is invoked on an integrity violation; overridable in
	// tests, log.Fatal otherwise.
	fatal func(msg string, fields ...zap.Field)
}

// New creates a listener replaying into the given engine. Recorder
// failures are logged and ignored; they never abort replay.
func New(log *zap.Logger, cfg Config, ctx replay.Context, recorders ...recorder.Recorder) *Listener {
	if cfg.AcceptTimeout < 1 {
		cfg.AcceptTimeout = DefaultAcceptTimeout
	}
	l := &Listener{
		log:       log,
		cfg:       cfg,
		ctx:       ctx,
		recorders: recorders,
		run:       atomic.NewBool(false),
		done:      make(chan struct{}),
		fatal:     log.Fatal,
	}
	return l
}

// Start binds the server socket and spawns the worker. It returns
// once the socket is listening.
func (l *Listener) Start() error {
	socket, err := net.Listen(l.cfg.Network, l.cfg.Address)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s %s", l.cfg.Network, l.cfg.Address)
	}
	deadlined, hasDeadline := socket.(deadlineListener)
	if !hasDeadline {
		_ = socket.Close()
		return pkgerrors.Errorf("%s listener does not support accept deadlines", l.cfg.Network)
	}
	l.socket = deadlined
	l.run.Store(true)
	go l.worker()
	l.log.Info("context listener is waiting for connection from protocol runner",
		zap.String("network", l.cfg.Network),
		zap.String("address", l.cfg.Address))
	return nil
}

// RequestShutdown asks the worker to stop at its next check point.
func (l *Listener) RequestShutdown() {
	l.run.Store(false)
}

// Join closes the server socket and waits for the worker to finish.
// RequestShutdown must have been called first.
func (l *Listener) Join() {
	if l.socket != nil {
		_ = l.socket.Close()
	}
	<-l.done
}

func (l *Listener) worker() {
	defer close(l.done)
	for l.run.Load() {
		conn, err := l.accept()
		if err != nil {
			if l.run.Load() {
				l.log.Error("failed to accept connection", zap.Error(err))
			}
			continue
		}
		if conn == nil {
			// accept timeout, re-check the run flag
			continue
		}
		if err := l.serveConnection(conn); err != nil {
			if l.run.Load() {
				l.log.Error("error processing context events", zap.Error(err))
			}
			continue
		}
		l.log.Info("context listener finished connection")
	}
	l.log.Info("context listener thread finished")
}

// serveConnection processes one producer's stream until disconnect,
// shutdown or failure.
func (l *Listener) serveConnection(conn net.Conn) error {
	defer conn.Close()
	l.log.Info("context listener received connection from protocol runner",
		zap.Stringer("remote", conn.RemoteAddr()))

	replayer := replay.NewReplayer(l.ctx, l.cfg.CycleLength)
	decoder := replay.NewDecoder(conn)

	for l.run.Load() {
		action, err := decoder.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.log.Info("protocol runner disconnected")
			} else {
				l.log.Warn("failed to receive event from protocol runner", zap.Error(err))
			}
			return nil
		}
		if action.Kind == replay.KindShutdown {
			// the producer disconnected or is restarting; keep
			// listening for a new connection
			l.log.Info("protocol runner signalled shutdown")
			return nil
		}

		if replayer.Events()%heartbeatEvery == 0 {
			l.log.Info("received protocol event",
				zap.Uint64("count", replayer.Events()),
				zap.String("context_hash", l.lastCommitB58()))
		}

		for _, rec := range l.recorders {
			if err := rec.Record(action); err != nil {
				l.log.Warn("failed to store context action",
					zap.String("action", string(action.Kind)),
					zap.Error(err))
			}
		}

		if err := replayer.Apply(action); err != nil {
			if errors.Is(err, replay.ErrIntegrityViolation) {
				l.fatal("context hash mismatch, refusing to continue on diverged state",
					zap.Error(err))
				return err
			}
			return pkgerrors.Wrapf(err, "failed to apply %s action", action.Kind)
		}
	}
	return nil
}

// accept blocks for at most the accept timeout; a timeout yields a
// nil connection and nil error so the caller re-checks the run flag.
func (l *Listener) accept() (net.Conn, error) {
	if err := l.socket.SetDeadline(time.Now().Add(l.cfg.AcceptTimeout)); err != nil {
		return nil, err
	}
	conn, err := l.socket.Accept()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil
		}
		if !l.run.Load() {
			// socket closed during shutdown
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "failed to accept connection")
	}
	return conn, nil
}

func (l *Listener) lastCommitB58() string {
	hash, exists := l.ctx.GetLastCommitHash()
	if !exists {
		return "-none-"
	}
	return hash.Base58()
}

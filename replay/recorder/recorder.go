// Package recorder provides the audit-only sinks the listener fans
// every received context action out to. Recording is best effort: a
// failing recorder is logged by the caller and never aborts replay.
package recorder

import (
	"github.com/Fidelio-foundation/Fidelio/replay"
)

// Recorder receives every context action that passes through the
// listener, in arrival order.
type Recorder interface {
	// Record stores one action. Failures are reported to the caller,
	// which logs and ignores them.
	Record(action *replay.Action) error

	// Close releases the recorder's resources, flushing anything
	// buffered.
	Close() error
}

// Noop is a recorder that accepts and discards everything.
type Noop struct{}

func (Noop) Record(*replay.Action) error { return nil }
func (Noop) Close() error                { return nil }

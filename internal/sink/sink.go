// Package sink defines the two abstract boundaries the scheduler talks to:
// an Input sink delivering Fx0A key satisfiers and speed changes, and an
// Output sink receiving frames, sound edges, and terminal status. Real
// transports (internal/wsadapter) implement these; the scheduler and machine
// never import a transport package directly, per spec.md §1's "the core
// consumes only an abstract input sink ... and an abstract output sink."
package sink

import (
	"context"
	"time"
)

// Status is a terminal condition reported once before the scheduler exits.
type Status int

const (
	// StatusHalted means the halt sentinel was reached.
	StatusHalted Status = iota
	// StatusCrashed means a VM programming error occurred.
	StatusCrashed
)

func (s Status) String() string {
	switch s {
	case StatusHalted:
		return "halted"
	case StatusCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// Input is polled by the scheduler once per loop iteration (and, while
// paused on Fx0A, once per ~10ms wait) for asynchronous control events.
// Ordinary keypad press/release state is not part of this interface - it is
// written directly to chip8.Machine.SetKey, since handlers only ever read it
// (spec.md §3, §5).
type Input interface {
	// DequeueKey waits up to timeout for a key value (0x0-0xF) satisfying a
	// pending Fx0A, returning ok=false if none arrives before the timeout or
	// ctx is done.
	DequeueKey(ctx context.Context, timeout time.Duration) (key uint8, ok bool)

	// TakeSpeed returns a newly requested instructions-per-second value if
	// one arrived since the last call, non-blocking. Callers are
	// responsible for clamping it to >= 1.
	TakeSpeed() (tps int, ok bool)
}

// Output receives scheduler emissions. Implementations must not block
// indefinitely on Frame in a way that starves cancellation, but the
// scheduler intentionally offers no back-pressure relief: a slow sink is
// expected to make the scheduler block (spec.md §5 "back-pressure is
// desired").
type Output interface {
	// Frame is called once per 60Hz iteration with exactly 2048 bytes, one
	// per pixel (0 or 1), row-major, top-left first.
	Frame(pixels []byte) error

	// Sound is called only on a rising/falling edge of the sound timer.
	Sound(on bool) error

	// NeedKey is called when an Fx0A wait begins.
	NeedKey(vx uint8) error

	// Status is called exactly once, immediately before the scheduler
	// terminates because the machine halted or crashed. It is not called
	// on cancellation or when an earlier Output call returned an error.
	Status(s Status) error
}

// Package scheduler implements the real-time, cooperative, single-threaded
// loop that drives a chip8.Machine: it couples CPU instruction rate, 60Hz
// timer/sound/frame updates, and the Fx0A blocking key wait, while staying
// responsive to asynchronous speed changes and cancellation (spec.md §4.E,
// §5). It is grounded on original_source/main.py's emulator_runner(), the
// literal source the spec was distilled from, re-expressed with a per-frame
// stdlib time.Timer and a select on the context's Done channel.
package scheduler

import (
	"context"
	"time"

	"github.com/chip8lab/chippy/internal/chip8"
	"github.com/chip8lab/chippy/internal/sink"
)

// FrameHz is the fixed rate of timer decrement and frame emission.
const FrameHz = 60

// FramePeriod is 1/FrameHz.
const FramePeriod = time.Second / FrameHz

// keyWaitTimeout bounds how long DequeueKey blocks while paused on Fx0A, so
// the loop remains liveness-checkable (spec.md §5 "Timeouts").
const keyWaitTimeout = 10 * time.Millisecond

// Scheduler drives one Machine against one Input/Output sink pair.
type Scheduler struct {
	Machine *chip8.Machine
	Input   sink.Input
	Output  sink.Output

	tps int

	now   func() time.Time
	sleep func(time.Duration)
}

// New constructs a Scheduler. initialTPS is clamped to >= 1.
func New(m *chip8.Machine, in sink.Input, out sink.Output, initialTPS int) *Scheduler {
	if initialTPS < 1 {
		initialTPS = 1
	}
	return &Scheduler{
		Machine: m,
		Input:   in,
		Output:  out,
		tps:     initialTPS,
		now:     time.Now,
	}
}

// Run executes the scheduler's main loop until the Machine halts, crashes,
// or ctx is canceled. On cancellation, Run returns nil without emitting any
// further output (spec.md §4.E "Cancellation").
func (s *Scheduler) Run(ctx context.Context) error {
	lastTick := s.now()
	var cpuDebt float64
	var awaitingKeyVx *uint8
	lastSoundState := false

	for {
		if ctx.Err() != nil {
			return nil
		}

		s.Machine.ClearDrawSync()

		if awaitingKeyVx != nil {
			key, ok := s.Input.DequeueKey(ctx, keyWaitTimeout)
			if ctx.Err() != nil {
				return nil
			}
			if !ok {
				continue
			}
			s.Machine.V[*awaitingKeyVx] = key
			awaitingKeyVx = nil
			lastTick = s.now()
			cpuDebt = 0
			continue
		}

		if newTPS, ok := s.Input.TakeSpeed(); ok {
			if newTPS < 1 {
				newTPS = 1
			}
			s.tps = newTPS
		}

		now := s.now()
		dt := now.Sub(lastTick).Seconds()
		lastTick = now

		cpuDebt += dt
		cycles := int(cpuDebt * float64(s.tps))
		if cycles > 0 {
			cpuDebt -= float64(cycles) / float64(s.tps)
			if cpuDebt < 0 {
				cpuDebt = 0
			}
		}

		paused := false
		for i := 0; i < cycles; i++ {
			result := s.Machine.Step()
			switch result.Outcome {
			case chip8.Continue:
				// fall through to the display-wait check below
			case chip8.NeedKey:
				vx := result.NeedKeyVx
				awaitingKeyVx = &vx
				if err := s.Output.NeedKey(vx); err != nil {
					return err
				}
				paused = true
			case chip8.Halted:
				s.Output.Status(sink.StatusHalted)
				return nil
			case chip8.Crashed:
				s.Output.Status(sink.StatusCrashed)
				return result.Err
			}
			if paused || s.Machine.AwaitingDrawSync() {
				break
			}
		}

		if paused {
			lastTick = s.now()
			cpuDebt = 0
			continue
		}

		s.Machine.UpdateTimers()

		if on := s.Machine.SoundOn(); on != lastSoundState {
			if err := s.Output.Sound(on); err != nil {
				return err
			}
			lastSoundState = on
		}

		if err := s.Output.Frame(s.Machine.Screen[:]); err != nil {
			return err
		}

		elapsed := s.now().Sub(now)
		sleepFor := FramePeriod - elapsed
		if sleepFor > 0 {
			s.waitFrame(ctx, sleepFor)
		}
	}
}

// waitFrame sleeps for d, or until ctx is canceled, whichever comes first.
// If sleep is set (tests), it is used directly and ctx is not consulted,
// trading the cancellation-promptness guarantee for determinism.
func (s *Scheduler) waitFrame(ctx context.Context, d time.Duration) {
	if s.sleep != nil {
		s.sleep(d)
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

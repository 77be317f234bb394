// Package chip8 implements the CHIP-8 machine state, decoder, and opcode
// handlers: memory, registers, stack, timers, framebuffer, keypad, and the
// quirk flags that distinguish COSMAC-VIP/SCHIP/XO-CHIP interpreter
// behavior. It has no knowledge of real time, networking, or rendering -
// those live in internal/scheduler and internal/wsadapter.
package chip8

import "sync/atomic"

// Memory layout, in bytes.
const (
	MemSize    = 0x1000 // 4 KiB
	FontStart  = 0x050
	FontBytes  = 80 // 16 digits * 5 bytes
	ProgStart  = 0x200
	MaxROMSize = MemSize - ProgStart // 3584

	ScreenW = 64
	ScreenH = 32
	ScreenSize = ScreenW * ScreenH

	StackSize = 16
)

// font is the canonical CHIP-8 hex digit sprite set, bit-exact, installed at
// FontStart by NewMachine and never mutated by any opcode.
var font = [FontBytes]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Quirks holds the boot-time configurable behaviors that differ across
// historical CHIP-8 interpreters. Defaults match spec.md §3.
type Quirks struct {
	// DisplayWait makes Dxyn yield to the next 60 Hz frame boundary.
	DisplayWait bool
	// Clipping drops sprite pixels that extend past the right/bottom edge
	// after the base coordinate has already been wrapped; wraps them when
	// false.
	Clipping bool
	// Shifting makes 8xy6/8xyE read their input from Vy rather than Vx.
	Shifting bool
	// LoadStoreIncrement makes Fx55/Fx65 advance I by x+1 after the
	// transfer.
	LoadStoreIncrement bool
	// LogicResetsVF makes 8xy1/8xy2/8xy3 clear VF after the logic op.
	LogicResetsVF bool
	// HaltOnSentinel makes the loader append the 0xFFFF halt sentinel
	// immediately after the ROM bytes (see spec.md §9 Open Question 1).
	HaltOnSentinel bool
}

// DefaultQuirks returns the spec.md §3 default quirk configuration.
func DefaultQuirks() Quirks {
	return Quirks{
		DisplayWait:        true,
		Clipping:           true,
		Shifting:           false,
		LoadStoreIncrement: true,
		LogicResetsVF:      true,
		HaltOnSentinel:     false,
	}
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithQuirks overrides the default quirk configuration wholesale.
func WithQuirks(q Quirks) Option {
	return func(m *Machine) { m.Quirks = q }
}

// Machine is the complete CHIP-8 machine state: one instance per emulation
// session, owned by whatever drives Step (the scheduler). The keypad is the
// single exception: SetKey may be called from a different goroutine than the
// one calling Step, per spec.md §5.
type Machine struct {
	Mem   [MemSize]byte
	V     [16]byte
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackSize]uint16

	DT uint8
	ST uint8

	Screen [ScreenSize]byte

	Quirks Quirks

	// drawSync is set by Dxyn when DisplayWait is enabled, and cleared by
	// the scheduler at the top of each cycle batch.
	drawSync bool

	// keypad is read by opcode handlers and written by SetKey, which may be
	// called from another goroutine; a relaxed atomic load/store per key is
	// sufficient since each key is an independent single-writer byte (see
	// spec.md §5).
	keypad [16]atomic.Bool

	rng randSource
}

// NewMachine constructs a fresh Machine with quirk defaults, the font
// installed at FontStart, and PC at ProgStart. All volatile state is zero.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		PC:     ProgStart,
		Quirks: DefaultQuirks(),
		rng:    defaultRandSource{},
	}
	copy(m.Mem[FontStart:FontStart+FontBytes], font[:])
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SoundOn reports whether the sound timer is currently active.
func (m *Machine) SoundOn() bool {
	return m.ST > 0
}

// UpdateTimers decrements DT and ST by one each, if they are greater than
// zero. Intended to be called once per 60 Hz tick by the scheduler.
func (m *Machine) UpdateTimers() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}

// ClearDrawSync resets the "awaiting draw sync" flag; called by the
// scheduler at the start of each cycle batch.
func (m *Machine) ClearDrawSync() {
	m.drawSync = false
}

// AwaitingDrawSync reports whether a Dxyn instruction set the draw-sync flag
// since the last ClearDrawSync, and DisplayWait is enabled.
func (m *Machine) AwaitingDrawSync() bool {
	return m.Quirks.DisplayWait && m.drawSync
}

// SetKey sets the pressed state of keypad index i (0x0-0xF). Indices outside
// that range are ignored. Safe to call concurrently with Step.
func (m *Machine) SetKey(i int, pressed bool) {
	if i < 0 || i > 0xF {
		return
	}
	m.keypad[i].Store(pressed)
}

// KeyPressed reports whether keypad index i (0x0-0xF) is currently pressed.
func (m *Machine) KeyPressed(i int) bool {
	if i < 0 || i > 0xF {
		return false
	}
	return m.keypad[i].Load()
}

// FirstPressedKey returns the lowest-indexed pressed key and true, or
// (0, false) if no key is pressed.
func (m *Machine) FirstPressedKey() (uint8, bool) {
	for i := 0; i < 16; i++ {
		if m.keypad[i].Load() {
			return uint8(i), true
		}
	}
	return 0, false
}

// randSource abstracts Cxnn's random byte source so tests can supply a
// deterministic one.
type randSource interface {
	Byte() byte
}

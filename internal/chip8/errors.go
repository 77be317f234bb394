package chip8

import "errors"

// VM programming errors: terminal, reported as {status: crashed} per
// spec.md §7.
var (
	ErrStackOverflow  = errors.New("chip8: stack overflow on CALL")
	ErrStackUnderflow = errors.New("chip8: stack underflow on RET")
	// ErrMemoryOverflow covers any instruction whose memory access (fetch,
	// Fx33, Fx55, Fx65, or a Dxyn sprite read) would reach past the end of
	// the 4 KiB address space. spec.md §7 lists this as a VM programming
	// error, terminal and reported as {status: crashed}.
	ErrMemoryOverflow = errors.New("chip8: memory access out of range")
)

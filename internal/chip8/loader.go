package chip8

import "errors"

// ErrROMEmpty and ErrROMTooLarge are the two input-validation errors LoadROM
// can return, mirroring spec.md §6's "loaded"/ROM_EMPTY/ROM_TOO_LARGE
// contract. Neither error leaves the Machine mutated.
var (
	ErrROMEmpty    = errors.New("chip8: rom is empty")
	ErrROMTooLarge = errors.New("chip8: rom exceeds 3584 bytes")
)

// haltSentinel is the non-standard word the loader may append after a ROM
// (spec.md §9 Open Question 1). It is not part of the CHIP-8 ISA; the
// decoder treats any fetched 0xFFFF word as halt regardless of how it ended
// up in memory.
const haltSentinel = 0xFFFF

// LoadROM copies rom into memory starting at ProgStart, after validating its
// size. It does not reset any other machine state - callers that want a
// fresh session should construct a new Machine with NewMachine and load into
// that, matching the "fresh machine per load" semantics in SPEC_FULL.md.
func (m *Machine) LoadROM(rom []byte) error {
	if len(rom) == 0 {
		return ErrROMEmpty
	}
	if len(rom) > MaxROMSize {
		return ErrROMTooLarge
	}
	copy(m.Mem[ProgStart:], rom)
	if m.Quirks.HaltOnSentinel {
		end := ProgStart + len(rom)
		if end+1 < MemSize {
			m.Mem[end] = byte(haltSentinel >> 8)
			m.Mem[end+1] = byte(haltSentinel & 0xFF)
		}
	}
	return nil
}

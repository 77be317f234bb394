package chip8

// Each handler below assumes fetch has already advanced PC by 2; a "skip"
// advances PC by a further 2. VF-setting handlers compute the primary result
// first and set VF last, so that a handler whose Vx happens to be VF ends up
// holding the flag value, not the arithmetic value (spec.md §3, §8).

func (m *Machine) opCLS() {
	m.Screen = [ScreenSize]byte{}
}

func (m *Machine) opRET() StepResult {
	if m.SP == 0 {
		return crashedResult(ErrStackUnderflow)
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	return continueResult()
}

func (m *Machine) opJP(nnn uint16) {
	m.PC = nnn
}

func (m *Machine) opCALL(nnn uint16) StepResult {
	if int(m.SP) == StackSize {
		return crashedResult(ErrStackOverflow)
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = nnn
	return continueResult()
}

func (m *Machine) opSEVxByte(x, nn uint8) {
	if m.V[x] == nn {
		m.PC += 2
	}
}

func (m *Machine) opSNEVxByte(x, nn uint8) {
	if m.V[x] != nn {
		m.PC += 2
	}
}

func (m *Machine) opSEVxVy(x, y uint8) {
	if m.V[x] == m.V[y] {
		m.PC += 2
	}
}

func (m *Machine) opLDVxByte(x, nn uint8) {
	m.V[x] = nn
}

func (m *Machine) opADDVxByte(x, nn uint8) {
	m.V[x] = m.V[x] + nn
}

func (m *Machine) opLDVxVy(x, y uint8) {
	m.V[x] = m.V[y]
}

func (m *Machine) opORVxVy(x, y uint8) {
	m.V[x] = m.V[x] | m.V[y]
	if m.Quirks.LogicResetsVF {
		m.V[0xF] = 0
	}
}

func (m *Machine) opANDVxVy(x, y uint8) {
	m.V[x] = m.V[x] & m.V[y]
	if m.Quirks.LogicResetsVF {
		m.V[0xF] = 0
	}
}

func (m *Machine) opXORVxVy(x, y uint8) {
	m.V[x] = m.V[x] ^ m.V[y]
	if m.Quirks.LogicResetsVF {
		m.V[0xF] = 0
	}
}

func (m *Machine) opADDVxVy(x, y uint8) {
	sum := uint16(m.V[x]) + uint16(m.V[y])
	m.V[x] = byte(sum)
	if sum > 0xFF {
		m.V[0xF] = 1
	} else {
		m.V[0xF] = 0
	}
}

func (m *Machine) opSUBVxVy(x, y uint8) {
	a, b := m.V[x], m.V[y]
	m.V[x] = a - b
	if a > b {
		m.V[0xF] = 1
	} else {
		m.V[0xF] = 0
	}
}

func (m *Machine) opSHRVx(x, y uint8) {
	src := m.V[x]
	if m.Quirks.Shifting {
		src = m.V[y]
	}
	lsb := src & 0x1
	m.V[x] = src >> 1
	m.V[0xF] = lsb
}

func (m *Machine) opSUBNVxVy(x, y uint8) {
	a, b := m.V[x], m.V[y]
	m.V[x] = b - a
	if b >= a {
		m.V[0xF] = 1
	} else {
		m.V[0xF] = 0
	}
}

func (m *Machine) opSHLVx(x, y uint8) {
	src := m.V[x]
	if m.Quirks.Shifting {
		src = m.V[y]
	}
	msb := (src >> 7) & 0x1
	m.V[x] = src << 1
	m.V[0xF] = msb
}

func (m *Machine) opSNEVxVy(x, y uint8) {
	if m.V[x] != m.V[y] {
		m.PC += 2
	}
}

func (m *Machine) opLDIAddr(nnn uint16) {
	m.I = nnn & 0xFFF
}

func (m *Machine) opJPV0Addr(nnn uint16) {
	m.PC = (nnn + uint16(m.V[0])) & 0xFFF
}

func (m *Machine) opRNDVx(x, nn uint8) {
	m.V[x] = m.rng.Byte() & nn
}

// opDRW implements Dxyn: base coordinates are wrapped unconditionally before
// any pixel work; per-pixel overflow beyond the screen is then either
// dropped (Clipping) or wrapped, matching spec.md §4.C and the preserved
// Open Question 4 behavior. The sprite rows at I..I+n-1 are bounds-checked
// before any pixel is touched, since I is a 12-bit register an implementer
// can legally point at the very end of memory (e.g. LD I, 0xFFF; DRW with
// n>1): that is a VM programming error, reported Crashed, not a panic.
func (m *Machine) opDRW(vx, vy, n uint8) StepResult {
	if int(m.I)+int(n) > MemSize {
		return crashedResult(ErrMemoryOverflow)
	}

	bx := int(m.V[vx]) % ScreenW
	by := int(m.V[vy]) % ScreenH

	m.V[0xF] = 0

	for r := 0; r < int(n); r++ {
		sprite := m.Mem[int(m.I)+r]
		py := by + r
		for b := 0; b < 8; b++ {
			if (sprite>>(7-b))&1 == 0 {
				continue
			}
			px := bx + b
			if m.Quirks.Clipping {
				if px >= ScreenW || py >= ScreenH {
					continue
				}
			} else {
				px %= ScreenW
				py %= ScreenH
			}
			idx := py*ScreenW + px
			if m.Screen[idx] == 1 {
				m.V[0xF] = 1
			}
			m.Screen[idx] ^= 1
		}
	}

	if m.Quirks.DisplayWait {
		m.drawSync = true
	}
	return continueResult()
}

func (m *Machine) opSKPVx(x uint8) {
	if m.KeyPressed(int(m.V[x] & 0xF)) {
		m.PC += 2
	}
}

func (m *Machine) opSKNPVx(x uint8) {
	if !m.KeyPressed(int(m.V[x] & 0xF)) {
		m.PC += 2
	}
}

func (m *Machine) opLDVxDT(x uint8) {
	m.V[x] = m.DT
}

// opLDVxK implements Fx0A's blocking key wait as a tagged outcome rather
// than raising an exception (spec.md §9 Design Notes): if a key is already
// pressed it resolves immediately; otherwise it reports NeedKey and leaves
// Vx untouched, to be written by the scheduler once a key arrives.
func (m *Machine) opLDVxK(x uint8) StepResult {
	if key, ok := m.FirstPressedKey(); ok {
		m.V[x] = key
		return continueResult()
	}
	return needKeyResult(x)
}

func (m *Machine) opLDDTVx(x uint8) {
	m.DT = m.V[x]
}

func (m *Machine) opLDSTVx(x uint8) {
	m.ST = m.V[x]
}

func (m *Machine) opADDIVx(x uint8) {
	m.I = (m.I + uint16(m.V[x])) & 0xFFF
}

func (m *Machine) opLDFVx(x uint8) {
	m.I = FontStart + uint16(m.V[x]&0xF)*5
}

// opLDBVx implements Fx33. I can legally be set to any 12-bit value
// (LD I, 0xFFF is a valid Annn), so the three-byte write at I..I+2 is
// bounds-checked first rather than trusted to always land inside memory.
func (m *Machine) opLDBVx(x uint8) StepResult {
	if int(m.I)+2 >= MemSize {
		return crashedResult(ErrMemoryOverflow)
	}
	n := m.V[x]
	m.Mem[m.I] = n / 100
	m.Mem[m.I+1] = (n / 10) % 10
	m.Mem[m.I+2] = n % 10
	return continueResult()
}

func (m *Machine) opLDIVx(x uint8) StepResult {
	if int(m.I)+int(x) >= MemSize {
		return crashedResult(ErrMemoryOverflow)
	}
	for i := uint8(0); i <= x; i++ {
		m.Mem[int(m.I)+int(i)] = m.V[i]
	}
	if m.Quirks.LoadStoreIncrement {
		m.I = (m.I + uint16(x) + 1) & 0xFFF
	}
	return continueResult()
}

// opLDVxI implements Fx65. Bounds-checked for the same reason as Fx55
// (opLDIVx): I is attacker/ROM-controlled and can sit at the very end of
// memory.
func (m *Machine) opLDVxI(x uint8) StepResult {
	if int(m.I)+int(x) >= MemSize {
		return crashedResult(ErrMemoryOverflow)
	}
	for i := uint8(0); i <= x; i++ {
		m.V[i] = m.Mem[int(m.I)+int(i)]
	}
	if m.Quirks.LoadStoreIncrement {
		m.I = (m.I + uint16(x) + 1) & 0xFFF
	}
	return continueResult()
}

package chip8

import "math/rand"

// defaultRandSource backs Cxnn with math/rand, matching the teacher's use of
// the stdlib PRNG rather than crypto/rand - CHIP-8 RNG has no security
// requirement.
type defaultRandSource struct{}

func (defaultRandSource) Byte() byte {
	return byte(rand.Intn(256))
}

// WithRandSource overrides the random byte source used by Cxnn. Intended for
// deterministic tests.
func WithRandSource(r randSource) Option {
	return func(m *Machine) { m.rng = r }
}

package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	randv2 "math/rand/v2"
)

// entropySeed returns a 64-bit seed read from the operating system's
// entropy source.
func entropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("sampler: failed to read entropy: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// newEntropyRand returns a PCG generator seeded from the entropy source.
func newEntropyRand() *randv2.Rand {
	return randv2.New(randv2.NewPCG(entropySeed(), 0))
}

// mix64 is the SplitMix64 finalizer. Entry identifiers are small and
// consecutive; mixing them spreads adjacent ids across well-separated
// generator streams.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Package rng derives all game randomness from block entropy.
//
// A Seed is an immutable 32-byte value. Code that makes a random decision takes
// a Seed and builds its own Generator, so two decisions that must agree (for
// example validating a move and then executing it) each replay the same stream
// from the start instead of sharing a partially consumed generator.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Seed is 32 bytes of entropy.
type Seed [32]byte

// SeedFromBytes copies b into a Seed. b must be exactly 32 bytes.
func SeedFromBytes(b []byte) (Seed, error) {
	var s Seed
	if len(b) != len(s) {
		return Seed{}, fmt.Errorf("seed must be %d bytes, got %d", len(s), len(b))
	}
	copy(s[:], b)
	return s, nil
}

// SeedFromHex parses the output of Seed.String.
func SeedFromHex(h string) (Seed, error) {
	b, err := hex.DecodeString(h)
	if err != nil {
		return Seed{}, fmt.Errorf("invalid seed hex: %w", err)
	}
	return SeedFromBytes(b)
}

func (s Seed) String() string { return hex.EncodeToString(s[:]) }

func (s Seed) IsZero() bool { return s == Seed{} }

// Generator returns a fresh stream for s.
func (s Seed) Generator() *Generator {
	return &Generator{seed: s, bufPos: len([32]byte{})}
}

// Generator is a deterministic byte stream derived from sha256(seed || counter).
// It does not depend on platform RNGs.
type Generator struct {
	seed    Seed
	counter uint64
	buf     [32]byte
	bufPos  int
}

func (g *Generator) Read(p []byte) {
	for len(p) > 0 {
		if g.bufPos >= len(g.buf) {
			g.refill()
		}
		n := copy(p, g.buf[g.bufPos:])
		g.bufPos += n
		p = p[n:]
	}
}

func (g *Generator) refill() {
	var in [32 + 8]byte
	copy(in[:32], g.seed[:])
	binary.LittleEndian.PutUint64(in[32:], g.counter)
	g.counter++
	g.buf = sha256.Sum256(in[:])
	g.bufPos = 0
}

func (g *Generator) Uint64() uint64 {
	var b [8]byte
	g.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// Intn returns a uniform value in [0, n). It panics if n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn with n <= 0")
	}
	if n == 1 {
		return 0
	}
	// Reject the tail of the uint64 range so every residue is equally likely.
	un := uint64(n)
	limit := math.MaxUint64 - (math.MaxUint64 % un)
	for {
		v := g.Uint64()
		if v < limit {
			return int(v % un)
		}
	}
}

// IntRange returns a uniform value in [lo, hi].
func (g *Generator) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + g.Intn(hi-lo+1)
}

// Bool returns true with probability 1/2.
func (g *Generator) Bool() bool {
	return g.Intn(2) == 1
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NextString returns n characters drawn from [A-Za-z0-9].
func (g *Generator) NextString(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[g.Intn(len(alphabet))]
	}
	return string(out)
}

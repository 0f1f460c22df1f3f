package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// SeedSequence generates the per-(generation, worker) sub-seeds for a
// single solver run from one master seed. Its own generation is
// single-threaded and deterministic (§5); once built, For is safe to call
// concurrently from worker goroutines since it only reads r.master.
type SeedSequence struct {
	master uint64
}

// NewSeedSequence wraps a master seed. A zero master seed is valid: it is
// the caller's job to decide whether 0 means "auto-generate" (§6
// Configuration: PRNG seed sequence, defaulted; overridable).
func NewSeedSequence(master uint64) SeedSequence {
	return SeedSequence{master: master}
}

// Master returns the top-level seed this sequence was built from, so
// callers can log it (§9, Open Question — RNG seeds: "keep it configurable
// and log it, so runs are reproducible without reading code").
func (s SeedSequence) Master() uint64 { return s.master }

// For derives the seed for generation g, worker w. Distinct (g, w) pairs
// always derive distinct, independent sequences.
func (s SeedSequence) For(generation, worker int) uint64 {
	label := fmt.Sprintf("gen%d/worker%d", generation, worker)
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.master)
	h.Write(buf[:])
	h.Write([]byte(label))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// ForLabel derives a seed for an arbitrary named sub-stream, e.g. the
// reduction step's tie-break stream, independent from any (generation,
// worker) stream.
func (s SeedSequence) ForLabel(label string) uint64 {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.master)
	h.Write(buf[:])
	h.Write([]byte(label))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

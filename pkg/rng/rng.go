package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// RNG provides deterministic random number generation for one sampling
// worker or one GMC generation. Each derives its own seed from the
// orchestrator's master seed sequence so that worker interleaving never
// changes which random draws a given (generation, worker) pair sees (§4.7,
// §5 "Ordering guarantees"). The derivation follows the formula:
//
//	seed_stage = H(masterSeed, label, configHash)
//
// where H is SHA-256 and the first 8 bytes are used as the uint64 seed.
//
// All methods are deterministic given the same initial seed, making solver
// runs reproducible across processes given identical inputs.
type RNG struct {
	seed   uint64
	label  string
	source *rand.Rand
}

// NewRNG creates a label-specific RNG by deriving a sub-seed from the
// master seed. The derivation uses SHA-256 to combine:
//   - masterSeed: the orchestrator's top-level seed for the whole run
//   - label: identifies the (generation, worker) pair, e.g. "gen1/worker3"
//   - configHash: hash of the run configuration, so config changes shift
//     the sequence even with the same masterSeed
//
// This ensures that:
//  1. Same inputs always produce the same RNG sequence (determinism)
//  2. Different workers get independent random sequences (isolation)
//  3. Config changes result in different sequences (sensitivity)
func NewRNG(masterSeed uint64, label string, configHash []byte) *RNG {
	h := sha256.New()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], masterSeed)
	h.Write(buf[:])

	h.Write([]byte(label))
	h.Write(configHash)

	hash := h.Sum(nil)
	derivedSeed := binary.BigEndian.Uint64(hash[:8])

	return &RNG{
		seed:   derivedSeed,
		label:  label,
		source: rand.New(rand.NewSource(int64(derivedSeed))),
	}
}

// Intn returns a pseudo-random integer in [0, n). It panics if n <= 0. This
// backs the placer's uniform point/type draws (§4.4, §4.5).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn argument must be positive")
	}
	return r.source.Intn(n)
}

// Float64 returns a pseudo-random float64 in [0.0, 1.0). It backs
// WeightedChoice's threshold draw.
func (r *RNG) Float64() float64 {
	return r.source.Float64()
}

// Shuffle pseudo-randomizes the order of elements in slice. The placer uses
// this to randomize the order subjects are attempted in, rather than always
// placing type-by-type (§4.4: "a placement order ... deterministic given
// the PRNG state").
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.source.Shuffle(n, swap)
}

// Seed returns the derived seed for this RNG, for reproducibility logging
// (the orchestrator reports it alongside each progress line).
func (r *RNG) Seed() uint64 {
	return r.seed
}

// WeightedChoice selects an index from weights using weighted random
// selection. Weights must be non-negative. Returns -1 if all weights are
// zero or weights is empty. Generational fixing (§4.5) uses this to weight
// which type loses a subject by how many of that type are currently
// placed, rather than picking uniformly among types.
func (r *RNG) WeightedChoice(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}

	total := 0.0
	for _, w := range weights {
		if w < 0 {
			panic("rng: WeightedChoice weights must be non-negative")
		}
		total += w
	}

	if total == 0 {
		return -1
	}

	randVal := r.Float64() * total

	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if randVal < cumulative {
			return i
		}
	}

	return len(weights) - 1
}

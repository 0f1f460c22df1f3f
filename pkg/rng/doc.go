// Package rng provides deterministic random number generation for the
// facility arrangement solver's sampling workers.
//
// # Overview
//
// The RNG type ensures reproducible Monte-Carlo runs by deriving
// worker/generation-specific seeds from a single master seed (§5: "PRNG:
// per-thread instance, seeded from a shared seed sequence whose generation
// is single-threaded and deterministic"). SeedSequence generates that shared
// sequence and exposes its master seed (Master) so callers can log it and a
// run can be replayed without reading code (§9, Open Question — RNG seeds).
//
// # Sub-Seed Derivation
//
// Each RNG derives its seed using SHA-256:
//
//	seed_worker = H(masterSeed, label, configHash)
//
// where:
//   - masterSeed: the orchestrator's top-level seed for the whole run
//   - label: identifies the (generation, worker) pair, e.g. "gen1/worker3"
//   - configHash: hash of the run configuration, so config changes shift
//     the sequence even with the same masterSeed
//
// This ensures:
//  1. Same inputs always produce the same RNG sequence (determinism)
//  2. Different workers get independent random sequences (isolation)
//  3. Config changes result in different sequences (sensitivity)
//
// # Usage
//
// The orchestrator derives one RNG per (generation, worker) pair from a
// SeedSequence:
//
//	seeds := rng.NewSeedSequence(masterSeed)
//	label := fmt.Sprintf("gen%d/worker%d", generation, worker)
//	workerRNG := rng.NewRNG(seeds.For(generation, worker), label, nil)
//
// # Thread Safety
//
// RNG instances are NOT thread-safe. Each worker goroutine derives its own
// instance from the shared SeedSequence when it starts; SeedSequence itself
// is safe for concurrent reads once built.
package rng

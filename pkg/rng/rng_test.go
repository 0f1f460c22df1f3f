package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

// TestNewRNG_Determinism verifies that the same inputs always produce the same RNG.
func TestNewRNG_Determinism(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("run_config_v1"))

	rng1 := NewRNG(masterSeed, label, configHash[:])
	rng2 := NewRNG(masterSeed, label, configHash[:])

	if rng1.Seed() != rng2.Seed() {
		t.Errorf("Same inputs produced different seeds: %d vs %d", rng1.Seed(), rng2.Seed())
	}

	for i := 0; i < 100; i++ {
		v1 := rng1.Intn(1_000_000)
		v2 := rng2.Intn(1_000_000)
		if v1 != v2 {
			t.Errorf("Iteration %d: Same RNGs produced different values: %d vs %d", i, v1, v2)
		}
	}
}

// TestNewRNG_SequenceDeterminism verifies the entire sequence is reproducible.
func TestNewRNG_SequenceDeterminism(t *testing.T) {
	masterSeed := uint64(987654321)
	label := "gen2/worker1"
	configHash := sha256.Sum256([]byte("run_config_v2"))

	rng1 := NewRNG(masterSeed, label, configHash[:])
	sequence1 := make([]int, 50)
	for i := range sequence1 {
		sequence1[i] = rng1.Intn(1_000_000)
	}

	rng2 := NewRNG(masterSeed, label, configHash[:])
	sequence2 := make([]int, 50)
	for i := range sequence2 {
		sequence2[i] = rng2.Intn(1_000_000)
	}

	for i := range sequence1 {
		if sequence1[i] != sequence2[i] {
			t.Errorf("Position %d: sequences differ: %d vs %d", i, sequence1[i], sequence2[i])
		}
	}
}

// TestNewRNG_DifferentLabels verifies different (generation, worker) labels
// produce different sequences, the isolation property the orchestrator
// relies on when spawning one worker per generation (§4.7).
func TestNewRNG_DifferentLabels(t *testing.T) {
	masterSeed := uint64(123456789)
	configHash := sha256.Sum256([]byte("same_config"))

	rng1 := NewRNG(masterSeed, "gen0/worker0", configHash[:])
	rng2 := NewRNG(masterSeed, "gen0/worker1", configHash[:])
	rng3 := NewRNG(masterSeed, "gen1/worker0", configHash[:])

	if rng1.Seed() == rng2.Seed() {
		t.Error("Different labels produced identical seeds")
	}
	if rng1.Seed() == rng3.Seed() {
		t.Error("Different labels produced identical seeds")
	}
	if rng2.Seed() == rng3.Seed() {
		t.Error("Different labels produced identical seeds")
	}

	v1 := rng1.Intn(1_000_000)
	v2 := rng2.Intn(1_000_000)
	v3 := rng3.Intn(1_000_000)
	if v1 == v2 && v2 == v3 {
		t.Error("Different labels produced identical first values (extremely unlikely)")
	}
}

// TestNewRNG_DifferentConfigs verifies different config hashes produce different sequences.
func TestNewRNG_DifferentConfigs(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"

	config1Hash := sha256.Sum256([]byte("run_config_v1"))
	config2Hash := sha256.Sum256([]byte("run_config_v2"))
	config3Hash := sha256.Sum256([]byte("run_config_v3"))

	rng1 := NewRNG(masterSeed, label, config1Hash[:])
	rng2 := NewRNG(masterSeed, label, config2Hash[:])
	rng3 := NewRNG(masterSeed, label, config3Hash[:])

	if rng1.Seed() == rng2.Seed() {
		t.Error("Different configs produced identical seeds")
	}
	if rng1.Seed() == rng3.Seed() {
		t.Error("Different configs produced identical seeds")
	}
	if rng2.Seed() == rng3.Seed() {
		t.Error("Different configs produced identical seeds")
	}
}

// TestNewRNG_DifferentMasterSeeds verifies different master seeds produce different sequences.
func TestNewRNG_DifferentMasterSeeds(t *testing.T) {
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("same_config"))

	rng1 := NewRNG(uint64(111), label, configHash[:])
	rng2 := NewRNG(uint64(222), label, configHash[:])
	rng3 := NewRNG(uint64(333), label, configHash[:])

	if rng1.Seed() == rng2.Seed() {
		t.Error("Different master seeds produced identical seeds")
	}
	if rng1.Seed() == rng3.Seed() {
		t.Error("Different master seeds produced identical seeds")
	}
	if rng2.Seed() == rng3.Seed() {
		t.Error("Different master seeds produced identical seeds")
	}
}

// TestRNG_Intn verifies Intn produces values in range and is deterministic,
// the draw the placer uses to pick a point or type (§4.4).
func TestRNG_Intn(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))

	r := NewRNG(masterSeed, label, configHash[:])

	for i := 0; i < 100; i++ {
		v := r.Intn(10)
		if v < 0 || v >= 10 {
			t.Errorf("Intn(10) produced out-of-range value: %d", v)
		}
	}

	rng1 := NewRNG(masterSeed, label, configHash[:])
	rng2 := NewRNG(masterSeed, label, configHash[:])

	for i := 0; i < 50; i++ {
		v1 := rng1.Intn(100)
		v2 := rng2.Intn(100)
		if v1 != v2 {
			t.Errorf("Iteration %d: Intn not deterministic: %d vs %d", i, v1, v2)
		}
	}
}

// TestRNG_IntnPanic verifies Intn panics on invalid input.
func TestRNG_IntnPanic(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))
	r := NewRNG(masterSeed, label, configHash[:])

	defer func() {
		if rec := recover(); rec == nil {
			t.Error("Intn(0) did not panic")
		}
	}()

	r.Intn(0)
}

// TestRNG_Float64 verifies Float64 produces values in [0, 1) and is deterministic.
func TestRNG_Float64(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))

	r := NewRNG(masterSeed, label, configHash[:])

	for i := 0; i < 100; i++ {
		v := r.Float64()
		if v < 0.0 || v >= 1.0 {
			t.Errorf("Float64() produced out-of-range value: %f", v)
		}
	}

	rng1 := NewRNG(masterSeed, label, configHash[:])
	rng2 := NewRNG(masterSeed, label, configHash[:])

	for i := 0; i < 50; i++ {
		v1 := rng1.Float64()
		v2 := rng2.Float64()
		if v1 != v2 {
			t.Errorf("Iteration %d: Float64 not deterministic: %f vs %f", i, v1, v2)
		}
	}
}

// TestRNG_Shuffle verifies Shuffle produces deterministic permutations, the
// property the placer relies on for its randomized placement order (§4.4).
func TestRNG_Shuffle(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))

	rng1 := NewRNG(masterSeed, label, configHash[:])
	slice1 := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng1.Shuffle(len(slice1), func(i, j int) {
		slice1[i], slice1[j] = slice1[j], slice1[i]
	})

	rng2 := NewRNG(masterSeed, label, configHash[:])
	slice2 := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rng2.Shuffle(len(slice2), func(i, j int) {
		slice2[i], slice2[j] = slice2[j], slice2[i]
	})

	for i := range slice1 {
		if slice1[i] != slice2[i] {
			t.Errorf("Position %d: Shuffle not deterministic: %d vs %d", i, slice1[i], slice2[i])
		}
	}

	allSame := true
	for i := range slice1 {
		if slice1[i] != i {
			allSame = false
			break
		}
	}
	if allSame {
		t.Error("Shuffle did not change order (extremely unlikely)")
	}
}

// TestRNG_WeightedChoice verifies weighted random selection, the draw
// generational fixing uses to pick which type loses a subject (§4.5).
func TestRNG_WeightedChoice(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen1/worker0"
	configHash := sha256.Sum256([]byte("config"))

	tests := []struct {
		name    string
		weights []float64
		want    int // -1 for "should return -1"
	}{
		{"empty weights", []float64{}, -1},
		{"all zero weights", []float64{0, 0, 0}, -1},
		{"single weight", []float64{1.0}, 0},
		{"equal weights", []float64{1.0, 1.0, 1.0}, -2}, // -2 means "valid index"
		{"skewed weights", []float64{0.0, 10.0, 0.0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRNG(masterSeed, label, configHash[:])
			got := r.WeightedChoice(tt.weights)

			if tt.want == -1 {
				if got != -1 {
					t.Errorf("WeightedChoice() = %d, want -1", got)
				}
			} else if tt.want >= 0 {
				if got != tt.want {
					t.Errorf("WeightedChoice() = %d, want %d", got, tt.want)
				}
			} else {
				if got < 0 || got >= len(tt.weights) {
					t.Errorf("WeightedChoice() = %d, want valid index [0, %d)", got, len(tt.weights))
				}
			}
		})
	}

	weights := []float64{1.0, 2.0, 3.0}
	rng1 := NewRNG(masterSeed, label, configHash[:])
	rng2 := NewRNG(masterSeed, label, configHash[:])

	for i := 0; i < 50; i++ {
		v1 := rng1.WeightedChoice(weights)
		v2 := rng2.WeightedChoice(weights)
		if v1 != v2 {
			t.Errorf("Iteration %d: WeightedChoice not deterministic: %d vs %d", i, v1, v2)
		}
	}
}

// TestRNG_WeightedChoicePanic verifies negative weights cause panic.
func TestRNG_WeightedChoicePanic(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))
	r := NewRNG(masterSeed, label, configHash[:])

	defer func() {
		if rec := recover(); rec == nil {
			t.Error("WeightedChoice with negative weights did not panic")
		}
	}()

	r.WeightedChoice([]float64{1.0, -1.0, 2.0})
}

// TestSubSeedDerivationFormula verifies the exact derivation formula
// documented on NewRNG.
func TestSubSeedDerivationFormula(t *testing.T) {
	masterSeed := uint64(123456789)
	label := "gen3/worker2"
	configHash := []byte{1, 2, 3, 4, 5}

	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], masterSeed)
	h.Write(buf[:])
	h.Write([]byte(label))
	h.Write(configHash)
	hash := h.Sum(nil)
	expected := binary.BigEndian.Uint64(hash[:8])

	r := NewRNG(masterSeed, label, configHash)
	if r.Seed() != expected {
		t.Errorf("Derived seed mismatch: got %d, want %d", r.Seed(), expected)
	}
}

// BenchmarkNewRNG measures RNG creation performance.
func BenchmarkNewRNG(b *testing.B) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("benchmark_config"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewRNG(masterSeed, label, configHash[:])
	}
}

// BenchmarkRNG_Intn measures Intn performance, the placer's hot-path draw.
func BenchmarkRNG_Intn(b *testing.B) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))
	r := NewRNG(masterSeed, label, configHash[:])

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Intn(100)
	}
}

// BenchmarkRNG_Float64 measures Float64 performance.
func BenchmarkRNG_Float64(b *testing.B) {
	masterSeed := uint64(123456789)
	label := "gen0/worker0"
	configHash := sha256.Sum256([]byte("config"))
	r := NewRNG(masterSeed, label, configHash[:])

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Float64()
	}
}

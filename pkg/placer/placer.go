// Package placer implements the Randomised Placer (§4.4) and its
// generational-fixing variant (§4.5): constructive random placement of
// subjects onto a Layout, respecting per-point area capacity.
package placer

import (
	"fmt"

	"github.com/dshills/fapsolve/pkg/arrangement"
	"github.com/dshills/fapsolve/pkg/catalog"
	"github.com/dshills/fapsolve/pkg/faerrors"
	"github.com/dshills/fapsolve/pkg/rng"
)

// Place attempts to place, on top of arr's existing contents, maxAttempts
// worth of random retries for every still-to-place subject of every type in
// cat (§4.4). toPlace maps type name to the number of subjects of that type
// that must still find a home; callers building a fresh sample pass
// cat's InitiallyAvailable counts, callers doing generational fixing (§4.5)
// pass however many they freed up.
//
// Place mutates arr in place. On success every subject was placed. On
// failure it returns a faerrors.ErrAreaInfeasible-wrapped error and the
// caller discards the sample (§4.4 "ABORT sample"); arr is left partially
// placed and must not be reused.
func Place(arr *arrangement.Arrangement, cat *catalog.TypeCatalog, toPlace map[string]uint64, r *rng.RNG, maxAttempts int) error {
	points := arr.Layout().Names()
	if len(points) == 0 {
		return fmt.Errorf("%w: layout has no points to place onto", faerrors.ErrAreaInfeasible)
	}

	var queue []string
	for _, typeName := range cat.Names() {
		for i := uint64(0); i < toPlace[typeName]; i++ {
			queue = append(queue, typeName)
		}
	}
	r.Shuffle(len(queue), func(i, j int) { queue[i], queue[j] = queue[j], queue[i] })

	placedOfType := make(map[string]uint64, len(queue))
	for _, typeName := range queue {
		placed := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			p := points[r.Intn(len(points))]
			ok, err := arr.Add(p, typeName)
			if err != nil {
				return fmt.Errorf("placer: %w", err)
			}
			if ok {
				placed = true
				break
			}
		}
		if !placed {
			return fmt.Errorf("%w: could not place subject %d of type %q within %d attempts", faerrors.ErrAreaInfeasible, placedOfType[typeName], typeName, maxAttempts)
		}
		placedOfType[typeName]++
	}
	return nil
}

// InitialCounts builds the toPlace map for a fresh sample: every type's
// full InitiallyAvailable stock, nothing pre-placed.
func InitialCounts(cat *catalog.TypeCatalog) map[string]uint64 {
	out := make(map[string]uint64, cat.Len())
	for _, name := range cat.Names() {
		ty, _ := cat.Type(name)
		out[name] = ty.InitiallyAvailable
	}
	return out
}

// Fix implements Generational Fixing (§4.5): before generation g >= 1,
// starting from best (the previous generation's winning arrangement), remove
// a random 1/2^g fraction of currently placed subjects, returning a fresh
// Arrangement with those subjects removed and a toPlace map recording how
// many of each type must be re-placed. If a randomly chosen (point, type)
// has no removable subject, Fix resamples the point up to maxAttempts times
// (§4.5 "tie-break"); if every resample misses, Fix stops removing and
// returns with fewer than the target number of subjects freed.
func Fix(best *arrangement.Arrangement, cat *catalog.TypeCatalog, generation int, r *rng.RNG, maxAttempts int) (*arrangement.Arrangement, map[string]uint64) {
	clone := best.Clone()
	toPlace := make(map[string]uint64, cat.Len())

	if generation < 1 {
		return clone, toPlace
	}

	fraction := 1.0
	for i := 0; i < generation; i++ {
		fraction /= 2
	}

	total := best.Subjects()
	target := uint64(float64(total) * fraction)

	points := best.Layout().Names()
	types := cat.Names()
	if len(points) == 0 || len(types) == 0 {
		return clone, toPlace
	}

	var removed uint64
	for removed < target {
		weights := make([]float64, len(types))
		for i, ty := range types {
			weights[i] = float64(clone.SubjectsOfType(ty))
		}
		tyIdx := r.WeightedChoice(weights)
		if tyIdx < 0 {
			// Nothing left anywhere to remove.
			break
		}
		ty := types[tyIdx]

		removedThisRound := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			p := points[r.Intn(len(points))]
			if clone.Count(p, ty) > 0 {
				clone.Remove(p, ty)
				toPlace[ty]++
				removed++
				removedThisRound = true
				break
			}
		}
		if !removedThisRound {
			// The weighted type has subjects somewhere, but maxAttempts
			// random points all missed them; stop rather than loop
			// forever searching for the exact point.
			break
		}
	}

	return clone, toPlace
}

package genetic

import (
	"iter"
	"sync"

	"github.com/copyleftdev/GENO/internal/solver"
)

// Tracker is the append-only convergence log of one run. A single writer
// (the generation loop) appends; any number of readers may iterate or
// snapshot concurrently. Entries are immutable once appended.
type Tracker struct {
	mu      sync.RWMutex
	entries []solver.GenerationStats
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Append adds one generation's statistics. Called only by the engine.
func (t *Tracker) Append(stats solver.GenerationStats) {
	t.mu.Lock()
	t.entries = append(t.entries, stats)
	t.mu.Unlock()
}

// Len returns the number of recorded generations.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// At returns the entry at index i.
func (t *Tracker) At(i int) solver.GenerationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.entries[i]
}

// Snapshot returns a copy of all entries recorded so far.
func (t *Tracker) Snapshot() []solver.GenerationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]solver.GenerationStats(nil), t.entries...)
}

// Since returns a copy of the entries with Generation >= from. Useful for
// incremental consumers that remember their last seen generation.
func (t *Tracker) Since(from int) []solver.GenerationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if from < 0 {
		from = 0
	}
	if from >= len(t.entries) {
		return nil
	}
	return append([]solver.GenerationStats(nil), t.entries[from:]...)
}

// All returns a lazy, restartable view of the log. Each iteration walks the
// entries recorded up to the moment it reaches the end, so a consumer may
// iterate while the run is still appending and re-iterate later for the
// full history. The lock is held only per element.
func (t *Tracker) All() iter.Seq[solver.GenerationStats] {
	return func(yield func(solver.GenerationStats) bool) {
		for i := 0; ; i++ {
			t.mu.RLock()
			if i >= len(t.entries) {
				t.mu.RUnlock()
				return
			}
			s := t.entries[i]
			t.mu.RUnlock()
			if !yield(s) {
				return
			}
		}
	}
}

// medianFitness returns the interpolated median of a fitness-sorted
// population: the middle element, or the mean of the two middle elements
// when the population size is even.
func medianFitness(pop []individual) float64 {
	n := len(pop)
	if n%2 == 0 {
		return float64(pop[n/2-1].fitness+pop[n/2].fitness) / 2
	}
	return float64(pop[n/2].fitness)
}

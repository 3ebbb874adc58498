// Package genetic implements the GENO genetic engine: population seeding,
// tournament selection, row-wise crossover, mutation, elitism and the
// generation loop with cooperative cancellation.
package genetic

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
)

// individual pairs a candidate grid with its fitness. The grid is owned by
// exactly one population slot; clones are taken whenever an individual
// outlives its generation.
type individual struct {
	grid    nonogram.Grid
	fitness int
}

// Engine owns one run's search state: the population, the generation
// counter and the convergence log. An Engine is not safe for concurrent
// use; run it once.
type Engine struct {
	cfg     solver.Config
	puzzle  *nonogram.Puzzle
	eval    solver.Evaluator
	rng     *rand.Rand
	tracker *Tracker

	pop   []individual
	best  individual
	stale int
	start time.Time
}

// New validates the configuration and returns an engine ready to run.
func New(puzzle *nonogram.Puzzle, cfg solver.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Mutation == "" {
		cfg.Mutation = solver.MutationCell
	}
	if cfg.Crossover == "" {
		cfg.Crossover = solver.CrossoverUniform
	}
	if cfg.Seeding == "" {
		cfg.Seeding = solver.SeedRowFeasible
	}
	if cfg.SlideTries < 1 {
		cfg.SlideTries = 3
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		cfg:     cfg,
		puzzle:  puzzle,
		eval:    solver.Evaluator{ColorPenalty: cfg.ColorPenalty},
		rng:     rand.New(rand.NewSource(seed)),
		tracker: NewTracker(),
	}, nil
}

// Tracker returns the engine's convergence log. Safe to read while the
// engine is running.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// Run executes the generation loop until a terminal state is reached. The
// context is polled once per generation boundary; an in-flight evaluation
// batch always finishes. The result carries the best grid found regardless
// of status.
func (e *Engine) Run(ctx context.Context) *solver.Result {
	e.start = time.Now()
	e.pop = e.seedPopulation()
	e.evaluate(e.pop)
	sortByFitness(e.pop)
	e.best = individual{grid: e.pop[0].grid.Clone(), fitness: e.pop[0].fitness}
	e.record(0)

	gen := 0
	for {
		if status, done := e.terminal(ctx, gen); done {
			return e.finish(status, gen)
		}
		gen++
		e.pop = e.nextGeneration()
		e.record(gen)
	}
}

// terminal decides whether the run ends at this generation boundary and
// with which status. A solved population wins over a racing cancel: the
// solution is already in hand.
func (e *Engine) terminal(ctx context.Context, gen int) (solver.Status, bool) {
	if e.best.fitness == 0 {
		return solver.StatusSolved, true
	}
	select {
	case <-ctx.Done():
		return solver.StatusCancelled, true
	default:
	}
	if gen >= e.cfg.MaxGenerations {
		return solver.StatusExhausted, true
	}
	if e.cfg.StagnationLimit > 0 && e.stale >= e.cfg.StagnationLimit {
		return solver.StatusExhausted, true
	}
	if e.cfg.Budget > 0 && time.Since(e.start) >= e.cfg.Budget {
		return solver.StatusExhausted, true
	}
	return "", false
}

// nextGeneration builds, evaluates and ranks the successor population:
// EliteCount clones of the current leaders plus tournament-selected,
// recombined and mutated offspring.
func (e *Engine) nextGeneration() []individual {
	n := e.cfg.PopulationSize
	next := make([]individual, 0, n)

	for i := 0; i < e.cfg.EliteCount; i++ {
		next = append(next, individual{grid: e.pop[i].grid.Clone(), fitness: e.pop[i].fitness})
	}

	for len(next) < n {
		a := e.tournament()
		b := e.tournament()
		child := e.crossover(a, b)
		e.mutate(child)
		next = append(next, individual{grid: child})
	}

	e.evaluate(next[e.cfg.EliteCount:])
	sortByFitness(next)

	if next[0].fitness < e.best.fitness {
		e.best = individual{grid: next[0].grid.Clone(), fitness: next[0].fitness}
		e.stale = 0
	} else {
		e.stale++
	}
	return next
}

// record appends the current population's statistics to the tracker. The
// population must be sorted.
func (e *Engine) record(gen int) {
	e.tracker.Append(solver.GenerationStats{
		Generation: gen,
		Best:       e.pop[0].fitness,
		Median:     medianFitness(e.pop),
		Worst:      e.pop[len(e.pop)-1].fitness,
		Elapsed:    time.Since(e.start),
	})
}

func (e *Engine) finish(status solver.Status, gen int) *solver.Result {
	return &solver.Result{
		Status:      status,
		BestGrid:    e.best.grid,
		BestFitness: e.best.fitness,
		Generations: gen,
		History:     e.tracker.Snapshot(),
	}
}

func sortByFitness(pop []individual) {
	sort.Slice(pop, func(i, j int) bool { return pop[i].fitness < pop[j].fitness })
}

// Package solver defines the search surface of the GENO nonogram solver:
// hyperparameter configuration, fitness evaluation, per-generation
// statistics and run results. The genetic engine itself lives in the
// genetic subpackage.
package solver

import (
	"runtime"
	"time"

	"github.com/copyleftdev/GENO/internal/nonogram"
)

// Status is the terminal state of a solver run.
type Status string

const (
	// StatusSolved: a grid with fitness 0 was found.
	StatusSolved Status = "solved"
	// StatusExhausted: the generation, stagnation or wall-clock budget ran
	// out. Not an error; the result carries the best grid found.
	StatusExhausted Status = "exhausted"
	// StatusCancelled: cancellation was observed at a generation boundary.
	StatusCancelled Status = "cancelled"
)

// MutationKind selects the mutation operator.
type MutationKind string

const (
	// MutationCell reassigns each cell of a child, independently with
	// probability MutationRate, to a uniformly random palette index.
	MutationCell MutationKind = "cell"
	// MutationSlide slides a random segment end into an adjacent background
	// cell, preserving the row's segment sequence. SlideTries attempts are
	// made per row, each firing with probability MutationRate.
	MutationSlide MutationKind = "slide"
)

// CrossoverKind selects the recombination operator.
type CrossoverKind string

const (
	// CrossoverUniform picks every row of the child from either parent with
	// probability 0.5.
	CrossoverUniform CrossoverKind = "uniform"
	// CrossoverTwoPoint takes a contiguous block of rows from one parent
	// and the remainder from the other.
	CrossoverTwoPoint CrossoverKind = "two_point"
	// CrossoverMixed chooses uniform or two-point per pair, 50/50.
	CrossoverMixed CrossoverKind = "mixed"
)

// SeedKind selects the initial population strategy.
type SeedKind string

const (
	// SeedRowFeasible places each row's declared segments at random legal
	// offsets, so every individual starts row-consistent.
	SeedRowFeasible SeedKind = "row_feasible"
	// SeedUniform assigns every cell a uniformly random palette index.
	SeedUniform SeedKind = "uniform"
)

// Config holds the hyperparameters of one genetic run.
type Config struct {
	// PopulationSize is the fixed population size N. Must be positive.
	PopulationSize int `json:"population_size"`

	// EliteCount is the number of best individuals copied unchanged into
	// the next generation. Must be in [0, PopulationSize).
	EliteCount int `json:"elite_count"`

	// TournamentSize is the number of individuals drawn per tournament.
	TournamentSize int `json:"tournament_size"`

	// CrossoverRate is the probability of recombining a parent pair instead
	// of cloning one parent. In [0, 1].
	CrossoverRate float64 `json:"crossover_rate"`

	// MutationRate is the per-cell (or per-slide-try) mutation probability.
	// In [0, 1].
	MutationRate float64 `json:"mutation_rate"`

	// MaxGenerations bounds the run. Must be positive.
	MaxGenerations int `json:"max_generations"`

	// StagnationLimit ends the run after this many generations without
	// strict improvement of the best fitness. 0 disables the check.
	StagnationLimit int `json:"stagnation_limit"`

	// RandomSeed seeds the run's generator. 0 means seed from the clock.
	RandomSeed int64 `json:"random_seed"`

	// Workers is the fitness-evaluation worker count. 0 means GOMAXPROCS.
	Workers int `json:"workers"`

	// Budget is an optional wall-clock limit, polled at generation
	// boundaries. 0 disables it.
	Budget time.Duration `json:"budget"`

	// Mutation selects the mutation operator. Empty means MutationCell.
	Mutation MutationKind `json:"mutation"`

	// SlideTries is the per-row attempt count for MutationSlide. 0 means 3.
	SlideTries int `json:"slide_tries"`

	// Crossover selects the recombination operator. Empty means
	// CrossoverUniform.
	Crossover CrossoverKind `json:"crossover"`

	// Seeding selects the initial population strategy. Empty means
	// SeedRowFeasible.
	Seeding SeedKind `json:"seeding"`

	// ColorPenalty is the fitness penalty for matching segments of
	// differing colors. 0 means the line length.
	ColorPenalty int `json:"color_penalty"`
}

// DefaultConfig returns a configuration that solves small puzzles reliably.
// The numeric choices follow no tuned optimum; they are documented starting
// points meant to be swept.
func DefaultConfig() Config {
	return Config{
		PopulationSize:  200,
		EliteCount:      4,
		TournamentSize:  3,
		CrossoverRate:   0.8,
		MutationRate:    0.05,
		MaxGenerations:  500,
		StagnationLimit: 0,
		Workers:         runtime.GOMAXPROCS(0),
		Mutation:        MutationCell,
		Crossover:       CrossoverUniform,
		Seeding:         SeedRowFeasible,
	}
}

// Validate checks the configuration and returns a *ConfigError describing
// the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 1:
		return &ConfigError{Field: "population_size", Message: "must be positive"}
	case c.EliteCount < 0 || c.EliteCount >= c.PopulationSize:
		return &ConfigError{Field: "elite_count", Message: "must be in [0, population_size)"}
	case c.TournamentSize < 1:
		return &ConfigError{Field: "tournament_size", Message: "must be positive"}
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return &ConfigError{Field: "crossover_rate", Message: "must be in [0, 1]"}
	case c.MutationRate < 0 || c.MutationRate > 1:
		return &ConfigError{Field: "mutation_rate", Message: "must be in [0, 1]"}
	case c.MaxGenerations < 1:
		return &ConfigError{Field: "max_generations", Message: "must be positive"}
	case c.StagnationLimit < 0:
		return &ConfigError{Field: "stagnation_limit", Message: "must not be negative"}
	case c.Budget < 0:
		return &ConfigError{Field: "budget", Message: "must not be negative"}
	case c.ColorPenalty < 0:
		return &ConfigError{Field: "color_penalty", Message: "must not be negative"}
	}
	switch c.Mutation {
	case "", MutationCell, MutationSlide:
	default:
		return &ConfigError{Field: "mutation", Message: "unknown operator"}
	}
	switch c.Crossover {
	case "", CrossoverUniform, CrossoverTwoPoint, CrossoverMixed:
	default:
		return &ConfigError{Field: "crossover", Message: "unknown operator"}
	}
	switch c.Seeding {
	case "", SeedRowFeasible, SeedUniform:
	default:
		return &ConfigError{Field: "seeding", Message: "unknown strategy"}
	}
	return nil
}

// GenerationStats is one immutable entry of the convergence log.
type GenerationStats struct {
	// Generation is the zero-based generation index; generation 0 is the
	// seeded population.
	Generation int `json:"generation"`
	// Best is the lowest fitness in the population.
	Best int `json:"best"`
	// Median is the interpolated median fitness.
	Median float64 `json:"median"`
	// Worst is the highest fitness in the population.
	Worst int `json:"worst"`
	// Elapsed is the wall-clock time since the run started.
	Elapsed time.Duration `json:"elapsed"`
}

// Result is the outcome of a finished run. Every terminal status carries the
// best grid found, solved or not.
type Result struct {
	Status      Status            `json:"status"`
	BestGrid    nonogram.Grid     `json:"-"`
	BestFitness int               `json:"best_fitness"`
	Generations int               `json:"generations"`
	History     []GenerationStats `json:"history"`
}

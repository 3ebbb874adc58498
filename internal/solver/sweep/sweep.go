// Package sweep coordinates batches of independent genetic runs: seed
// restarts of one configuration for robustness, or sweeps over several
// configurations for ANOVA-style comparison. It collects one sample per
// {configuration, run} cell and leaves the statistical test to the
// consumer.
package sweep

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
	"github.com/copyleftdev/GENO/internal/solver/genetic"
)

// Sample is the outcome of one cell: configuration index, seed, terminal
// status, the final best fitness and the generation count. Generations is
// the generation at which the run ended; for solved runs that is the
// generation-to-solve.
type Sample struct {
	ConfigIndex int           `json:"config_index"`
	Seed        int64         `json:"seed"`
	Status      solver.Status `json:"status"`
	BestFitness int           `json:"best_fitness"`
	Generations int           `json:"generations"`
}

// Sweep describes a batch: every configuration is run once per seed. Runs
// are sequential; the context is checked between runs and a cancelled
// sweep returns the samples gathered so far.
type Sweep struct {
	Configs []solver.Config
	Seeds   []int64
}

// Restarts returns a sweep that reruns a single configuration across seeds.
func Restarts(cfg solver.Config, seeds []int64) Sweep {
	return Sweep{Configs: []solver.Config{cfg}, Seeds: seeds}
}

// DefaultGrid crosses the base configuration with the reference parameter
// grid: crossover rate in {0.3, 0.6, 0.9} and mutation rate in
// {0.1, 0.2, 0.3}.
func DefaultGrid(base solver.Config) []solver.Config {
	crossoverRates := []float64{0.3, 0.6, 0.9}
	mutationRates := []float64{0.1, 0.2, 0.3}

	configs := make([]solver.Config, 0, len(crossoverRates)*len(mutationRates))
	for _, cr := range crossoverRates {
		for _, mr := range mutationRates {
			cfg := base
			cfg.CrossoverRate = cr
			cfg.MutationRate = mr
			configs = append(configs, cfg)
		}
	}
	return configs
}

// DefaultSeeds returns the reference seed list used for repeated trials.
func DefaultSeeds() []int64 {
	return []int64{11, 13, 17, 19, 23, 29, 31, 37, 41, 43}
}

// Run executes every {configuration, seed} cell in order and returns the
// collected samples. Configuration errors abort the sweep before any run
// starts; cancellation between runs returns the partial sample set with
// the context's error.
func (s Sweep) Run(ctx context.Context, puzzle *nonogram.Puzzle) ([]Sample, error) {
	for _, cfg := range s.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	samples := make([]Sample, 0, len(s.Configs)*len(s.Seeds))
	for ci, cfg := range s.Configs {
		for _, seed := range s.Seeds {
			select {
			case <-ctx.Done():
				return samples, ctx.Err()
			default:
			}

			cfg.RandomSeed = seed
			engine, err := genetic.New(puzzle, cfg)
			if err != nil {
				return samples, err
			}
			result := engine.Run(ctx)
			samples = append(samples, Sample{
				ConfigIndex: ci,
				Seed:        seed,
				Status:      result.Status,
				BestFitness: result.BestFitness,
				Generations: result.Generations,
			})
		}
	}
	return samples, nil
}

// Summary aggregates the samples of one configuration.
type Summary struct {
	ConfigIndex     int     `json:"config_index"`
	Runs            int     `json:"runs"`
	Solved          int     `json:"solved"`
	MeanBest        float64 `json:"mean_best"`
	StdDevBest      float64 `json:"stddev_best"`
	MeanGenerations float64 `json:"mean_generations"`
}

// Summarize groups samples by configuration and reports per-configuration
// mean and standard deviation of the final best fitness, plus the mean
// generation count. The order follows the first appearance of each
// configuration index.
func Summarize(samples []Sample) []Summary {
	byConfig := make(map[int][]Sample)
	var order []int
	for _, sample := range samples {
		if _, seen := byConfig[sample.ConfigIndex]; !seen {
			order = append(order, sample.ConfigIndex)
		}
		byConfig[sample.ConfigIndex] = append(byConfig[sample.ConfigIndex], sample)
	}

	summaries := make([]Summary, 0, len(order))
	for _, ci := range order {
		group := byConfig[ci]
		bests := make([]float64, len(group))
		gens := make([]float64, len(group))
		solved := 0
		for i, sample := range group {
			bests[i] = float64(sample.BestFitness)
			gens[i] = float64(sample.Generations)
			if sample.Status == solver.StatusSolved {
				solved++
			}
		}
		summaries = append(summaries, Summary{
			ConfigIndex:     ci,
			Runs:            len(group),
			Solved:          solved,
			MeanBest:        stat.Mean(bests, nil),
			StdDevBest:      stat.StdDev(bests, nil),
			MeanGenerations: stat.Mean(gens, nil),
		})
	}
	return summaries
}

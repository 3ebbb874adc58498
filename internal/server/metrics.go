package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/GENO/internal/solver"
)

// Solve metrics, exported through the default registry and served by the
// /metrics endpoint in cmd/server.
var (
	solveRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geno",
		Name:      "solve_runs_total",
		Help:      "Finished solve runs by terminal status.",
	}, []string{"status"})

	solveGenerations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geno",
		Name:      "solve_generations",
		Help:      "Generations executed per finished solve run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	solveBestFitness = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geno",
		Name:      "solve_best_fitness",
		Help:      "Final best fitness per finished solve run.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(solveRunsTotal, solveGenerations, solveBestFitness)
}

func observeResult(result *solver.Result) {
	solveRunsTotal.WithLabelValues(string(result.Status)).Inc()
	solveGenerations.Observe(float64(result.Generations))
	solveBestFitness.Observe(float64(result.BestFitness))
}

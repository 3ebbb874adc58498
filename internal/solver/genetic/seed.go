package genetic

import (
	"math/rand"

	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
)

// seedPopulation builds the initial population using the configured
// strategy. Fitness is left unevaluated.
func (e *Engine) seedPopulation() []individual {
	pop := make([]individual, e.cfg.PopulationSize)
	for i := range pop {
		switch e.cfg.Seeding {
		case solver.SeedUniform:
			pop[i].grid = uniformGrid(e.puzzle, e.rng)
		default:
			pop[i].grid = rowFeasibleGrid(e.puzzle, e.rng)
		}
	}
	return pop
}

// uniformGrid assigns every cell a uniformly random palette index,
// background included.
func uniformGrid(puzzle *nonogram.Puzzle, rng *rand.Rand) nonogram.Grid {
	grid := nonogram.NewGrid(puzzle.Rows(), puzzle.Cols())
	colors := puzzle.Palette().Len()
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			grid.Set(r, c, rng.Intn(colors))
		}
	}
	return grid
}

// rowFeasibleGrid places each row's declared segments at random legal
// offsets, distributing the slack as random gaps. Mandatory single-cell
// gaps between consecutive same-color segments are always emitted, so the
// resulting row satisfies its clue exactly; column clues are ignored. This
// biases the initial population toward row-consistent individuals.
func rowFeasibleGrid(puzzle *nonogram.Puzzle, rng *rand.Rand) nonogram.Grid {
	grid := nonogram.NewGrid(puzzle.Rows(), puzzle.Cols())
	for r := 0; r < puzzle.Rows(); r++ {
		fillRow(grid.Row(r), puzzle.RowClues(r), rng)
	}
	return grid
}

// fillRow writes one random legal placement of segments into row, which
// must already be all background.
func fillRow(row []int, segments []nonogram.Segment, rng *rand.Rand) {
	slack := len(row) - nonogram.MinLineSpan(segments)
	pos := 0
	for i, seg := range segments {
		if slack > 0 && rng.Intn(2) == 0 {
			gap := rng.Intn(slack + 1)
			pos += gap
			slack -= gap
		}
		for j := 0; j < seg.Length; j++ {
			row[pos] = seg.Color
			pos++
		}
		if i+1 < len(segments) && segments[i+1].Color == seg.Color {
			pos++ // mandatory gap between same-color neighbors
		}
	}
}

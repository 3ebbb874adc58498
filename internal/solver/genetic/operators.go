package genetic

import (
	"github.com/copyleftdev/GENO/internal/nonogram"
	"github.com/copyleftdev/GENO/internal/solver"
)

// tournament draws TournamentSize individuals uniformly at random and
// returns the fittest. The population must be evaluated.
func (e *Engine) tournament() individual {
	best := e.pop[e.rng.Intn(len(e.pop))]
	for i := 1; i < e.cfg.TournamentSize; i++ {
		contender := e.pop[e.rng.Intn(len(e.pop))]
		if contender.fitness < best.fitness {
			best = contender
		}
	}
	return best
}

// crossover produces one child from two parents. With probability
// CrossoverRate the configured row-wise operator recombines them; otherwise
// the child is a clone of one randomly chosen parent.
func (e *Engine) crossover(a, b individual) nonogram.Grid {
	if e.rng.Float64() >= e.cfg.CrossoverRate {
		if e.rng.Intn(2) == 0 {
			return a.grid.Clone()
		}
		return b.grid.Clone()
	}

	op := e.cfg.Crossover
	if op == solver.CrossoverMixed {
		if e.rng.Intn(2) == 0 {
			op = solver.CrossoverUniform
		} else {
			op = solver.CrossoverTwoPoint
		}
	}
	if op == solver.CrossoverTwoPoint {
		return e.twoPointRows(a.grid, b.grid)
	}
	return e.uniformRows(a.grid, b.grid)
}

// uniformRows picks every row of the child from either parent with
// probability 0.5.
func (e *Engine) uniformRows(a, b nonogram.Grid) nonogram.Grid {
	child := nonogram.NewGrid(a.Rows(), a.Cols())
	for r := 0; r < a.Rows(); r++ {
		if e.rng.Intn(2) == 0 {
			child.CopyRowFrom(a, r)
		} else {
			child.CopyRowFrom(b, r)
		}
	}
	return child
}

// twoPointRows takes the rows between two random cut points from b and the
// remainder from a.
func (e *Engine) twoPointRows(a, b nonogram.Grid) nonogram.Grid {
	rows := a.Rows()
	p1 := e.rng.Intn(rows)
	p2 := e.rng.Intn(rows)
	if p1 > p2 {
		p1, p2 = p2, p1
	}

	child := nonogram.NewGrid(rows, a.Cols())
	for r := 0; r < rows; r++ {
		if r >= p1 && r <= p2 {
			child.CopyRowFrom(b, r)
		} else {
			child.CopyRowFrom(a, r)
		}
	}
	return child
}

// mutate applies the configured mutation operator to child in place.
func (e *Engine) mutate(child nonogram.Grid) {
	if e.cfg.Mutation == solver.MutationSlide {
		e.mutateSlide(child)
		return
	}
	e.mutateCells(child)
}

// mutateCells reassigns each cell, independently with probability
// MutationRate, to a uniformly random palette index (background included).
func (e *Engine) mutateCells(child nonogram.Grid) {
	if e.cfg.MutationRate == 0 {
		return
	}
	colors := e.puzzle.Palette().Len()
	for r := 0; r < child.Rows(); r++ {
		for c := 0; c < child.Cols(); c++ {
			if e.rng.Float64() < e.cfg.MutationRate {
				child.Set(r, c, e.rng.Intn(colors))
			}
		}
	}
}

// mutateSlide makes SlideTries attempts per row, each firing with
// probability MutationRate, to swap a segment end with an adjacent
// background cell. Slides preserve the row's segment sequence, so a
// row-feasible individual stays row-feasible.
func (e *Engine) mutateSlide(child nonogram.Grid) {
	if e.cfg.MutationRate == 0 {
		return
	}
	for r := 0; r < child.Rows(); r++ {
		row := child.Row(r)
		for try := 0; try < e.cfg.SlideTries; try++ {
			if e.rng.Float64() >= e.cfg.MutationRate {
				continue
			}
			pairs := slidablePairs(row)
			if len(pairs) == 0 {
				continue
			}
			p := pairs[e.rng.Intn(len(pairs))]
			row[p[0]], row[p[1]] = row[p[1]], row[p[0]]
		}
	}
}

// slidablePairs returns every index pair (i, j) whose swap slides a segment
// one cell into adjacent background without changing the row's segment
// sequence. A slide is rejected when it would fuse two same-color segments.
func slidablePairs(row []int) [][2]int {
	var pairs [][2]int
	n := len(row)
	for start := 0; start < n; {
		color := row[start]
		if color == nonogram.Background {
			start++
			continue
		}
		end := start
		for end+1 < n && row[end+1] == color {
			end++
		}
		// Slide left: the vacancy before the segment takes the end cell.
		if start > 0 && row[start-1] == nonogram.Background &&
			(start < 2 || row[start-2] != color) {
			pairs = append(pairs, [2]int{start - 1, end})
		}
		// Slide right: the start cell moves into the vacancy after the end.
		if end+1 < n && row[end+1] == nonogram.Background &&
			(end+2 >= n || row[end+2] != color) {
			pairs = append(pairs, [2]int{start, end + 1})
		}
		start = end + 1
	}
	return pairs
}

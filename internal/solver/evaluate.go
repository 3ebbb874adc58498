package solver

import "github.com/copyleftdev/GENO/internal/nonogram"

// Evaluator scores candidate grids against a puzzle's clues. The zero value
// uses the default color penalty (the line length). Evaluator is stateless
// and safe for concurrent use on distinct grids.
type Evaluator struct {
	// ColorPenalty is added when aligning two segments of differing colors.
	// 0 means "use the line length", which makes any color mismatch cost
	// more than any pure length mismatch on that line.
	ColorPenalty int
}

// Score returns the fitness of grid against puzzle using the default
// evaluator. 0 means every row and column matches its clue exactly.
func Score(grid nonogram.Grid, puzzle *nonogram.Puzzle) int {
	return Evaluator{}.Score(grid, puzzle)
}

// Score sums the per-line alignment cost over all rows and columns. It is a
// pure function of its inputs.
func (e Evaluator) Score(grid nonogram.Grid, puzzle *nonogram.Puzzle) int {
	total := 0
	for r := 0; r < puzzle.Rows(); r++ {
		total += e.lineCost(grid.RowSegments(r), puzzle.RowClues(r), puzzle.Cols())
	}
	for c := 0; c < puzzle.Cols(); c++ {
		total += e.lineCost(grid.ColSegments(c), puzzle.ColClues(c), puzzle.Rows())
	}
	return total
}

// lineCost is the minimum-cost alignment between the actual segment sequence
// of a line and its declared clue. Matching equal colors costs the length
// difference; matching differing colors costs the color penalty plus the
// longer length; an unmatched segment costs its own length. Clue sequences
// are short, so the quadratic dynamic program is cheap.
func (e Evaluator) lineCost(actual, want []nonogram.Segment, lineLen int) int {
	penalty := e.ColorPenalty
	if penalty <= 0 {
		penalty = lineLen
	}

	n, m := len(actual), len(want)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = prev[j-1] + want[j-1].Length
	}

	for i := 1; i <= n; i++ {
		a := actual[i-1]
		cur[0] = prev[0] + a.Length
		for j := 1; j <= m; j++ {
			w := want[j-1]
			match := prev[j-1]
			if a.Color == w.Color {
				match += absInt(a.Length - w.Length)
			} else {
				match += penalty + max(a.Length, w.Length)
			}
			drop := prev[j] + a.Length
			add := cur[j-1] + w.Length
			cur[j] = min(match, min(drop, add))
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package nonogram

import "fmt"

// Grid is a candidate coloring of a puzzle: a rows×cols array of palette
// indices, Background included. A Grid is owned by exactly one holder at a
// time; use Clone before handing a copy to another owner.
type Grid struct {
	rows, cols int
	cells      []int
}

// NewGrid returns a rows×cols grid with every cell set to Background.
func NewGrid(rows, cols int) Grid {
	return Grid{rows: rows, cols: cols, cells: make([]int, rows*cols)}
}

// GridFromCells builds a grid from row-major cell data. All rows must have
// the same length and the data must be non-empty.
func GridFromCells(cells [][]int) (Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return Grid{}, fmt.Errorf("grid: cell data is empty")
	}
	g := NewGrid(len(cells), len(cells[0]))
	for r, row := range cells {
		if len(row) != g.cols {
			return Grid{}, fmt.Errorf("grid: row %d has %d cells, want %d", r, len(row), g.cols)
		}
		copy(g.cells[r*g.cols:], row)
	}
	return g, nil
}

// Rows returns the grid height.
func (g Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g Grid) Cols() int { return g.cols }

// At returns the color index of cell (r, c).
func (g Grid) At(r, c int) int { return g.cells[r*g.cols+c] }

// Set assigns the color index of cell (r, c).
func (g Grid) Set(r, c, color int) { g.cells[r*g.cols+c] = color }

// Clone returns a deep copy that shares no storage with g.
func (g Grid) Clone() Grid {
	out := Grid{rows: g.rows, cols: g.cols, cells: make([]int, len(g.cells))}
	copy(out.cells, g.cells)
	return out
}

// CopyRowFrom overwrites row r of g with row r of src. Both grids must have
// the same width.
func (g Grid) CopyRowFrom(src Grid, r int) {
	copy(g.cells[r*g.cols:(r+1)*g.cols], src.cells[r*src.cols:(r+1)*src.cols])
}

// Row returns row r as a mutable slice backed by the grid.
func (g Grid) Row(r int) []int {
	return g.cells[r*g.cols : (r+1)*g.cols]
}

// Cells returns a row-major copy of the grid, suitable for serialization.
func (g Grid) Cells() [][]int {
	out := make([][]int, g.rows)
	for r := range out {
		out[r] = append([]int(nil), g.Row(r)...)
	}
	return out
}

// Equal reports whether two grids have identical dimensions and cells.
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i, c := range g.cells {
		if c != other.cells[i] {
			return false
		}
	}
	return true
}

// RowSegments returns the run-length encoding of row r: consecutive equal
// non-background cells merge into one segment, background cells break
// segments and are not emitted.
func (g Grid) RowSegments(r int) []Segment {
	return encodeLine(g.cols, func(i int) int { return g.At(r, i) })
}

// ColSegments returns the run-length encoding of column c.
func (g Grid) ColSegments(c int) []Segment {
	return encodeLine(g.rows, func(i int) int { return g.At(i, c) })
}

func encodeLine(length int, at func(int) int) []Segment {
	var segments []Segment
	prev := Background
	run := 0
	for i := 0; i < length; i++ {
		color := at(i)
		if color == prev {
			run++
			continue
		}
		if prev != Background && run > 0 {
			segments = append(segments, Segment{Color: prev, Length: run})
		}
		prev = color
		run = 1
	}
	if prev != Background && run > 0 {
		segments = append(segments, Segment{Color: prev, Length: run})
	}
	return segments
}

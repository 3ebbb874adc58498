package nonogram

import "fmt"

// Segment is one clue entry: a run of Length cells of Color. Color is never
// Background and Length is at least 1 in a validated puzzle.
type Segment struct {
	Color  int `json:"color"`
	Length int `json:"length"`
}

// LineKind distinguishes row clues from column clues in validation errors.
type LineKind string

const (
	RowLine    LineKind = "row"
	ColumnLine LineKind = "column"
)

// ValidationReason enumerates the ways a puzzle definition can be rejected.
type ValidationReason string

const (
	// ZeroDimension: width or height is < 1.
	ZeroDimension ValidationReason = "zero_dimension"
	// EmptyPalette: the palette has no colors at all.
	EmptyPalette ValidationReason = "empty_palette"
	// UnknownColor: a clue references a color index outside the palette, or
	// the background.
	UnknownColor ValidationReason = "unknown_color"
	// LineOverflow: a line's segments plus mandatory same-color gaps cannot
	// fit in the line.
	LineOverflow ValidationReason = "line_overflow"
	// InvalidSegment: a clue segment has a non-positive length.
	InvalidSegment ValidationReason = "invalid_segment"
	// ClueCountMismatch: the number of row or column clues does not match
	// the declared dimensions.
	ClueCountMismatch ValidationReason = "clue_count_mismatch"
)

// ValidationError reports why a puzzle definition was rejected. Line and
// Index are set for line-scoped reasons; Color is set for UnknownColor.
type ValidationError struct {
	Reason ValidationReason
	Line   LineKind
	Index  int
	Color  int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Reason {
	case ZeroDimension:
		return "puzzle: width and height must be at least 1"
	case EmptyPalette:
		return "puzzle: palette has no colors"
	case UnknownColor:
		return fmt.Sprintf("puzzle: %s %d references unknown color %d", e.Line, e.Index, e.Color)
	case LineOverflow:
		return fmt.Sprintf("puzzle: %s %d clue does not fit the line", e.Line, e.Index)
	case InvalidSegment:
		return fmt.Sprintf("puzzle: %s %d has a segment of non-positive length", e.Line, e.Index)
	case ClueCountMismatch:
		return fmt.Sprintf("puzzle: %s clue count does not match dimensions", e.Line)
	}
	return fmt.Sprintf("puzzle: invalid definition (%s)", e.Reason)
}

// Puzzle is an immutable nonogram definition: dimensions, palette and the
// declared segment sequence for every row and column. Construct one with
// NewPuzzle or FromGrid; a constructed Puzzle is safe for concurrent reads.
type Puzzle struct {
	rows, cols int
	palette    Palette
	rowClues   [][]Segment
	colClues   [][]Segment
}

// NewPuzzle validates a puzzle definition and returns the immutable Puzzle.
// rows and cols are the grid height and width; rowClues and colClues hold
// one ordered segment sequence per line (empty sequences mean an all
// background line). The clue slices are copied.
func NewPuzzle(rows, cols int, palette Palette, rowClues, colClues [][]Segment) (*Puzzle, error) {
	if rows < 1 || cols < 1 {
		return nil, &ValidationError{Reason: ZeroDimension}
	}
	if palette.Len() == 0 {
		return nil, &ValidationError{Reason: EmptyPalette}
	}
	if len(rowClues) != rows {
		return nil, &ValidationError{Reason: ClueCountMismatch, Line: RowLine}
	}
	if len(colClues) != cols {
		return nil, &ValidationError{Reason: ClueCountMismatch, Line: ColumnLine}
	}
	if err := validateClues(RowLine, rowClues, cols, palette); err != nil {
		return nil, err
	}
	if err := validateClues(ColumnLine, colClues, rows, palette); err != nil {
		return nil, err
	}
	return &Puzzle{
		rows:     rows,
		cols:     cols,
		palette:  palette,
		rowClues: copyClues(rowClues),
		colClues: copyClues(colClues),
	}, nil
}

// FromGrid derives a puzzle whose clues are exactly the run-length encoding
// of the given grid. The resulting puzzle always validates, and the grid
// scores 0 against it.
func FromGrid(grid Grid, palette Palette) (*Puzzle, error) {
	rowClues := make([][]Segment, grid.Rows())
	for r := range rowClues {
		rowClues[r] = grid.RowSegments(r)
	}
	colClues := make([][]Segment, grid.Cols())
	for c := range colClues {
		colClues[c] = grid.ColSegments(c)
	}
	return NewPuzzle(grid.Rows(), grid.Cols(), palette, rowClues, colClues)
}

// Rows returns the puzzle height.
func (p *Puzzle) Rows() int { return p.rows }

// Cols returns the puzzle width.
func (p *Puzzle) Cols() int { return p.cols }

// Palette returns the puzzle's color palette.
func (p *Puzzle) Palette() Palette { return p.palette }

// RowClues returns the declared segment sequence of row r. The returned
// slice must not be modified.
func (p *Puzzle) RowClues(r int) []Segment { return p.rowClues[r] }

// ColClues returns the declared segment sequence of column c. The returned
// slice must not be modified.
func (p *Puzzle) ColClues(c int) []Segment { return p.colClues[c] }

// MinLineSpan returns the minimum number of cells the segment sequence
// occupies: the segment lengths plus one mandatory background cell between
// consecutive segments of the same color. Differing colors may touch.
func MinLineSpan(segments []Segment) int {
	span := 0
	for i, seg := range segments {
		span += seg.Length
		if i > 0 && segments[i-1].Color == seg.Color {
			span++
		}
	}
	return span
}

func validateClues(kind LineKind, clues [][]Segment, lineLen int, palette Palette) error {
	for i, segments := range clues {
		for _, seg := range segments {
			if seg.Length < 1 {
				return &ValidationError{Reason: InvalidSegment, Line: kind, Index: i}
			}
			if seg.Color == Background || !palette.Contains(seg.Color) {
				return &ValidationError{Reason: UnknownColor, Line: kind, Index: i, Color: seg.Color}
			}
		}
		if MinLineSpan(segments) > lineLen {
			return &ValidationError{Reason: LineOverflow, Line: kind, Index: i}
		}
	}
	return nil
}

func copyClues(clues [][]Segment) [][]Segment {
	out := make([][]Segment, len(clues))
	for i, segments := range clues {
		out[i] = append([]Segment(nil), segments...)
	}
	return out
}

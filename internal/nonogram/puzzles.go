package nonogram

// Reference puzzles used across the solver's tests and examples.

// Palette indices of the tree puzzle.
const (
	treeLeaves = 1
	treeWood   = 2
)

// TreePalette returns the palette of the 5×5 tree puzzle: sky blue
// background, forest green leaves, saddle brown wood.
func TreePalette() Palette {
	return Palette{"#87ceeb", "#228b22", "#8b4513"}
}

// TreeGrid returns the authored solution of the tree puzzle.
func TreeGrid() Grid {
	g, err := GridFromCells([][]int{
		{0, 1, 1, 1, 0},
		{1, 1, 1, 1, 1},
		{1, 1, 2, 1, 1},
		{0, 0, 2, 0, 0},
		{0, 0, 2, 0, 0},
	})
	if err != nil {
		panic(err)
	}
	return g
}

// TreePuzzle returns a 5×5 two-color puzzle depicting a tree.
func TreePuzzle() *Puzzle {
	p, err := NewPuzzle(5, 5, TreePalette(),
		[][]Segment{
			{{treeLeaves, 3}},
			{{treeLeaves, 5}},
			{{treeLeaves, 2}, {treeWood, 1}, {treeLeaves, 2}},
			{{treeWood, 1}},
			{{treeWood, 1}},
		},
		[][]Segment{
			{{treeLeaves, 2}},
			{{treeLeaves, 3}},
			{{treeLeaves, 2}, {treeWood, 3}},
			{{treeLeaves, 3}},
			{{treeLeaves, 2}},
		})
	if err != nil {
		panic(err)
	}
	return p
}

// StripedPuzzle returns a 5×5 single-color puzzle with alternating full and
// broken stripes. Rows: [5], [1,1], [5], [1,1], [5].
func StripedPuzzle() *Puzzle {
	p, err := NewPuzzle(5, 5, Palette{"#ffffff", "#000000"},
		[][]Segment{
			{{1, 5}},
			{{1, 1}, {1, 1}},
			{{1, 5}},
			{{1, 1}, {1, 1}},
			{{1, 5}},
		},
		[][]Segment{
			{{1, 5}},
			{{1, 1}, {1, 1}, {1, 1}},
			{{1, 1}, {1, 1}, {1, 1}},
			{{1, 1}, {1, 1}, {1, 1}},
			{{1, 5}},
		})
	if err != nil {
		panic(err)
	}
	return p
}

// StripedGrid returns the authored solution of the striped puzzle: full rows
// alternate with rows colored only at the outer columns.
func StripedGrid() Grid {
	g, err := GridFromCells([][]int{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	})
	if err != nil {
		panic(err)
	}
	return g
}

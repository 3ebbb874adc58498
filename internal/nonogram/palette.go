// Package nonogram defines the puzzle model for the GENO solver: palettes,
// clue segments, validated puzzles and candidate grids.
package nonogram

import "strconv"

// Background is the palette index reserved for empty cells. It is never a
// legal segment color.
const Background = 0

// Palette is an ordered list of hex colors ("#rrggbb"). Index 0 is the
// background color; clue segments reference indices 1..Len()-1.
type Palette []string

// Len returns the number of colors in the palette, background included.
func (p Palette) Len() int {
	return len(p)
}

// Contains reports whether index is a valid palette index.
func (p Palette) Contains(index int) bool {
	return index >= 0 && index < len(p)
}

// RGB parses the color at index into its components. The second return value
// is false when the index is out of range or the color is not "#rrggbb".
func (p Palette) RGB(index int) ([3]uint8, bool) {
	if !p.Contains(index) {
		return [3]uint8{}, false
	}
	color := p[index]
	if len(color) != 7 || color[0] != '#' {
		return [3]uint8{}, false
	}
	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(color[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return [3]uint8{}, false
		}
		rgb[i] = uint8(v)
	}
	return rgb, true
}

// ContrastText returns "#ffffff" or "#000000", whichever reads better on top
// of the color at index. Unparseable colors default to black text.
func (p Palette) ContrastText(index int) string {
	rgb, ok := p.RGB(index)
	if ok && luminance(rgb) <= 0.5 {
		return "#ffffff"
	}
	return "#000000"
}

// luminance is the relative luminance of an sRGB color, in [0,1].
func luminance(rgb [3]uint8) float64 {
	r := float64(rgb[0]) / 255.0
	g := float64(rgb[1]) / 255.0
	b := float64(rgb[2]) / 255.0
	return 0.2126*r + 0.7152*g + 0.0722*b
}

package nonogram

import "testing"

func TestPaletteRGB(t *testing.T) {
	p := Palette{"#87ceeb", "#228b22", "not-a-color"}

	rgb, ok := p.RGB(0)
	if !ok {
		t.Fatal("expected valid color at index 0")
	}
	if rgb != [3]uint8{0x87, 0xce, 0xeb} {
		t.Errorf("got %v", rgb)
	}

	if _, ok := p.RGB(2); ok {
		t.Error("expected parse failure for malformed color")
	}
	if _, ok := p.RGB(5); ok {
		t.Error("expected failure for out of range index")
	}
}

func TestPaletteContrastText(t *testing.T) {
	p := Palette{"#ffffff", "#000000", "#228b22"}

	tests := []struct {
		index int
		want  string
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{2, "#ffffff"},
	}
	for _, tt := range tests {
		if got := p.ContrastText(tt.index); got != tt.want {
			t.Errorf("index %d: got %s, want %s", tt.index, got, tt.want)
		}
	}
}

package heatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexFormat(t *testing.T) {
	assert.Equal(t, "000000", RGBColor{}.Hex())
	assert.Equal(t, "ffffff", RGBColor{R: 255, G: 255, B: 255}.Hex())
	assert.Equal(t, "202a5e", RGBColor{R: 0x20, G: 0x2a, B: 0x5e}.Hex())
}

func TestDefaultPaletteClampsPositions(t *testing.T) {
	p := NewDefaultPalette()

	assert.Equal(t, p.Color(0), p.Color(-5))
	assert.Equal(t, p.Color(255), p.Color(300))

	// The table starts at the cold anchor.
	assert.Equal(t, "202a5e", p.Color(0).Hex())
}

func TestDefaultPaletteIsDeterministic(t *testing.T) {
	a := NewDefaultPalette()
	b := NewDefaultPalette()

	for _, pos := range []int{0, 1, 10, 100, 200, 255} {
		assert.Equal(t, a.Color(pos), b.Color(pos))
	}
}

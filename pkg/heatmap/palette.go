package heatmap

import "fmt"

// RGBColor is one entry of a color table.
type RGBColor struct {
	R uint8
	G uint8
	B uint8
}

// Hex renders the 6-hex-digit web form, no leading hash.
func (c RGBColor) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// Palette maps a table position to a color. Implementations hold a
// fixed-size table of paletteSize entries; positions outside it are clamped
// by the caller.
type Palette interface {
	Color(position int) RGBColor
}

const paletteSize = 256

// gradientPalette interpolates linearly between anchor colors.
type gradientPalette struct {
	table [paletteSize]RGBColor
}

// NewDefaultPalette builds the cold-to-hot table used when no external color
// map is supplied: dark blue through green and yellow to red.
func NewDefaultPalette() Palette {
	anchors := []RGBColor{
		{R: 0x20, G: 0x2a, B: 0x5e},
		{R: 0x1f, G: 0x8a, B: 0x70},
		{R: 0xf2, G: 0xc1, B: 0x4e},
		{R: 0xd6, G: 0x28, B: 0x28},
	}

	p := &gradientPalette{}
	segments := len(anchors) - 1
	perSegment := paletteSize / segments

	for i := 0; i < paletteSize; i++ {
		seg := i / perSegment
		if seg >= segments {
			seg = segments - 1
		}

		from, to := anchors[seg], anchors[seg+1]
		frac := float64(i-seg*perSegment) / float64(perSegment)

		p.table[i] = RGBColor{
			R: lerp(from.R, to.R, frac),
			G: lerp(from.G, to.G, frac),
			B: lerp(from.B, to.B, frac),
		}
	}

	return p
}

func (p *gradientPalette) Color(position int) RGBColor {
	if position < 0 {
		position = 0
	}

	if position >= paletteSize {
		position = paletteSize - 1
	}

	return p.table[position]
}

func lerp(from, to uint8, frac float64) uint8 {
	return uint8(float64(from) + (float64(to)-float64(from))*frac)
}

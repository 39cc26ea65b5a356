package tree

// Color is an RGBA colour with components in [0,1], the palette entry type.
// Matches the GPU kernel's `vec4<f32>` palette buffer entry.
type Color struct {
	R, G, B, A float32
}

// EmptyPaletteIndex is the reserved palette index meaning "no voxel here".
const EmptyPaletteIndex uint16 = 0xFFFF

// Palette is an indexed table of colours, looked up by the low 16 bits of a
// stored voxel or solid-brick descriptor value.
type Palette []Color

// IsEmpty reports whether a palette index denotes an empty voxel: either
// the reserved sentinel, or a palette entry whose four channels are all
// zero.
func (p Palette) IsEmpty(idx uint16) bool {
	if idx == EmptyPaletteIndex {
		return true
	}
	if int(idx) >= len(p) {
		// Stale index racing with streaming: treated as empty, never faulted.
		return true
	}
	c := p[idx]
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0
}

// Lookup returns the colour at idx, or transparent black if idx is out of
// range.
func (p Palette) Lookup(idx uint16) Color {
	if int(idx) >= len(p) {
		return Color{}
	}
	return p[idx]
}

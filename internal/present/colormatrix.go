package present

import "github.com/hajimehoshi/ebiten/v2"

// Filter is a post-process pass applied to the uploaded frame before it
// reaches the screen. Padding is always 0 in this package: a voxel frame
// is a flat rectangle of opaque ray hits, never a sprite with transparent
// margins a blur or outline would need to grow into.
type Filter interface {
	Apply(src, dst *ebiten.Image)
	Padding() int
}

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("voxrt: present: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// ColorMatrixFilter applies a 4x5 colour matrix as a tone-mapping pass over
// the traced frame: exposure, white balance, or a day/night grade a demo
// wants to apply after the kernel has already shaded and tinted every
// pixel. Row-major, offset in elements 4, 9, 14, 19.
type ColorMatrixFilter struct {
	Matrix      [20]float64
	uniforms    map[string]any
	matrixF32   [20]float32
	matrixSlice []float32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter returns a filter initialized to the identity matrix.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{uniforms: make(map[string]any, 1)}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	f.Matrix[0] = 1
	f.Matrix[6] = 1
	f.Matrix[12] = 1
	f.Matrix[18] = 1
	return f
}

// SetBrightness adjusts the matrix to add b (in [-1, 1]) to each channel.
func (f *ColorMatrixFilter) SetBrightness(b float64) {
	f.Matrix = [20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// SetContrast adjusts the matrix for contrast c; c=1 is unchanged, c=0 is flat grey.
func (f *ColorMatrixFilter) SetContrast(c float64) {
	t := (1.0 - c) / 2.0
	f.Matrix = [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SetSaturation adjusts the matrix for saturation s; s=1 is unchanged, s=0 is greyscale.
func (f *ColorMatrixFilter) SetSaturation(s float64) {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	f.Matrix = [20]float64{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// NewVoxelAlbedoGrade returns a filter pre-tuned for straight-Lambert voxel
// output: kernel.Shade has no ambient occlusion or specular term, so flat
// palette colours read washed out without a modest saturation and
// contrast lift layered over the identity matrix.
func NewVoxelAlbedoGrade() *ColorMatrixFilter {
	const contrast = 1.12
	const saturation = 1.15
	f := NewColorMatrixFilter()
	f.SetSaturation(saturation)
	offset := (1.0 - contrast) / 2.0
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			f.Matrix[row*5+col] *= contrast
		}
		f.Matrix[row*5+4] = offset
	}
	return f
}

// Apply renders the colour-matrix transform from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// Padding returns 0; a colour matrix never expands the image bounds.
func (f *ColorMatrixFilter) Padding() int { return 0 }

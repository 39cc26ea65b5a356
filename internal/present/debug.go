package present

import "github.com/hajimehoshi/ebiten/v2"

// debugShaderSrc isolates a single channel of the uploaded frame (the red
// channel, which both Config.MissingDataTint and Config.RequestFailedTint
// in internal/kernel lean heavily toward) and renders it as greyscale, so
// a developer can see exactly how much of a frame is tinted by missing or
// dropped streaming data without eyeballing a blended colour.
const debugShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	g := c.r
	return vec4(g, g, g, 1) * c.a
}
`

var debugShader *ebiten.Shader

func ensureDebugShader() *ebiten.Shader {
	if debugShader == nil {
		s, err := ebiten.NewShader([]byte(debugShaderSrc))
		if err != nil {
			panic("voxrt: present: failed to compile debug-tint shader: " + err.Error())
		}
		debugShader = s
	}
	return debugShader
}

// DebugTintFilter renders a frame's tint channel as greyscale in place of
// its shaded colour, a diagnostic overlay for streaming coverage.
type DebugTintFilter struct {
	shaderOp ebiten.DrawRectShaderOptions
}

// Apply renders the greyscale tint channel of src into dst.
func (f *DebugTintFilter) Apply(src, dst *ebiten.Image) {
	shader := ensureDebugShader()
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// Padding reports that the debug overlay doesn't expand the image bounds.
func (f *DebugTintFilter) Padding() int { return 0 }

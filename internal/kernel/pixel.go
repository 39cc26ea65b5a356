package kernel

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/tree"
)

// Viewport describes the camera a frame is rendered from: an origin, a
// forward direction, a frustum extent (horizontal scale, vertical scale,
// distance to the view plane), and a vertical field of view in radians.
type Viewport struct {
	Origin    geom.Vec3
	Direction geom.Vec3
	Frustum   geom.Vec3
	FOV       float32
}

// PrimaryRay constructs the camera ray through fractional viewport
// coordinates (u, v), each in [0,1], u increasing rightward and v upward.
// The view plane's bottom-left corner is built from the world-up axis and
// right = normalize(up × forward) under a left-handed, Y-up convention, and
// the ray is the offset from the origin to the point at (u, v) on that
// plane.
func PrimaryRay(vp Viewport, u, v float32) geom.Ray {
	forward := vp.Direction.Normalize()
	worldUp := geom.Vec3{0, 1, 0}
	right := worldUp.Cross(forward).Normalize()
	up := forward.Cross(right).Normalize()

	halfFOV := float32(math.Tan(float64(vp.FOV) / 2))
	planeDist := vp.Frustum[2]
	halfWidth := planeDist * halfFOV * vp.Frustum[0]
	halfHeight := planeDist * halfFOV * vp.Frustum[1]

	center := geom.Vec3{
		vp.Origin[0] + forward[0]*planeDist,
		vp.Origin[1] + forward[1]*planeDist,
		vp.Origin[2] + forward[2]*planeDist,
	}
	bottomLeft := geom.Vec3{
		center[0] - right[0]*halfWidth - up[0]*halfHeight,
		center[1] - right[1]*halfWidth - up[1]*halfHeight,
		center[2] - right[2]*halfWidth - up[2]*halfHeight,
	}
	target := geom.Vec3{
		bottomLeft[0] + right[0]*(2*halfWidth*u) + up[0]*(2*halfHeight*v),
		bottomLeft[1] + right[1]*(2*halfWidth*u) + up[1]*(2*halfHeight*v),
		bottomLeft[2] + right[2]*(2*halfWidth*u) + up[2]*(2*halfHeight*v),
	}
	dir := geom.Vec3{target[0] - vp.Origin[0], target[1] - vp.Origin[1], target[2] - vp.Origin[2]}
	return geom.NewRay(vp.Origin, dir.Normalize())
}

// Shade turns a traversal Result into a final colour: Lambert-weighted
// albedo against the configured light direction for a hit, or the
// background for a miss, either way tinted by how much missing or dropped
// streaming data the ray crossed.
func Shade(res Result, cfg Config) tree.Color {
	var c tree.Color
	if res.Hit {
		lambert := lambertFactor(res.Normal, cfg.LightDir)
		c = tree.Color{
			R: res.Albedo.R * lambert,
			G: res.Albedo.G * lambert,
			B: res.Albedo.B * lambert,
			A: res.Albedo.A,
		}
	} else {
		c = cfg.BackgroundColor
	}
	c = mixColor(c, cfg.MissingDataTint, res.MissingTint)
	c = mixColor(c, cfg.RequestFailedTint, res.FailedTint)
	return c
}

// lambertFactor maps dot(normal, -lightDir), naturally in [-1,1], onto
// [0,1] rather than clamping at zero: a deliberately unshadowed, single-
// bounce-free style consistent with the renderer's scope.
func lambertFactor(normal, lightDir geom.Vec3) float32 {
	d := -(normal[0]*lightDir[0] + normal[1]*lightDir[1] + normal[2]*lightDir[2])
	return clamp01((d + 1) / 2)
}

// TracePixel traces and shades the ray through fractional viewport
// coordinates (u, v).
func TracePixel(store *tree.Store, cfg Config, vp Viewport, u, v float32) tree.Color {
	ray := PrimaryRay(vp, u, v)
	return Shade(Trace(store, cfg, ray), cfg)
}

// tileSize mirrors the GPU dispatch's 8x8 compute workgroup: the CPU
// reference kernel processes one goroutine per tile instead of one
// invocation per work-item, trading granularity for goroutine overhead.
const tileSize = 8

// RenderFrame renders a width x height frame of store as seen from vp into
// a fresh image.RGBA. Work is split into 8x8 tiles, one goroutine per tile,
// capped at GOMAXPROCS concurrent tiles, the CPU analogue of the GPU
// kernel's workgroup dispatch.
func RenderFrame(store *tree.Store, cfg Config, vp Viewport, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	type tile struct{ x0, y0, x1, y1 int }
	var tiles []tile
	for y0 := 0; y0 < height; y0 += tileSize {
		y1 := y0 + tileSize
		if y1 > height {
			y1 = height
		}
		for x0 := 0; x0 < width; x0 += tileSize {
			x1 := x0 + tileSize
			if x1 > width {
				x1 = width
			}
			tiles = append(tiles, tile{x0, y0, x1, y1})
		}
	}

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for _, t := range tiles {
		wg.Add(1)
		sem <- struct{}{}
		go func(t tile) {
			defer wg.Done()
			defer func() { <-sem }()
			for y := t.y0; y < t.y1; y++ {
				v := 1 - (float32(y)+0.5)/float32(height)
				for x := t.x0; x < t.x1; x++ {
					u := (float32(x) + 0.5) / float32(width)
					c := TracePixel(store, cfg, vp, u, v)
					img.SetRGBA(x, y, toRGBA(c))
				}
			}
		}(t)
	}
	wg.Wait()
	return img
}

func toRGBA(c tree.Color) color.RGBA {
	return color.RGBA{
		R: toByte(c.R),
		G: toByte(c.G),
		B: toByte(c.B),
		A: toByte(c.A),
	}
}

func toByte(v float32) uint8 {
	v = clamp01(v) * 255
	return uint8(v + 0.5)
}

package voxrt

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/voxrt/voxrt/internal/geom"
	"github.com/voxrt/voxrt/internal/kernel"
)

// moveAnim holds an in-flight tween of the camera's world position, one
// gween.Tween per axis so each can finish independently.
type moveAnim struct {
	tweenX, tweenY, tweenZ *gween.Tween
	doneX, doneY, doneZ    bool
}

// Camera wraps a kernel.Viewport with the orbit/move/tween controls a demo
// or editor drives interactively. The Viewport itself stays the single
// source of truth the traversal reads; Camera only ever writes into it.
type Camera struct {
	// Viewport is the kernel-facing camera state: origin, direction,
	// frustum and FOV. Exported so RenderFrame/TracePixel can be called
	// directly against it.
	Viewport kernel.Viewport

	// Target is the world-space point the camera looks at; Direction is
	// recomputed from Origin and Target every call to Update.
	Target geom.Vec3

	followTarget *geom.Vec3
	followOffset geom.Vec3
	followLerp   float32
	move         *moveAnim
}

// NewCamera returns a Camera at origin looking at target, with a frustum
// extent and field of view suitable for an interactive session.
func NewCamera(origin, target geom.Vec3, fov float32) *Camera {
	c := &Camera{
		Target: target,
		Viewport: kernel.Viewport{
			Origin:  origin,
			Frustum: geom.Vec3{1, 1, 1},
			FOV:     fov,
		},
	}
	c.retarget()
	return c
}

// Follow makes the camera track a moving world point with the given
// offset and lerp factor; a lerp of 1 snaps immediately, lower values
// trail smoothly.
func (c *Camera) Follow(target *geom.Vec3, offset geom.Vec3, lerp float32) {
	c.followTarget = target
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current follow target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// MoveTo animates the camera's Origin to dst over duration seconds using
// easeFn, the same per-axis gween.Tween pattern a 2D camera's ScrollTo
// uses for panning.
func (c *Camera) MoveTo(dst geom.Vec3, duration float32, easeFn ease.TweenFunc) {
	o := c.Viewport.Origin
	c.move = &moveAnim{
		tweenX: gween.New(o[0], dst[0], duration, easeFn),
		tweenY: gween.New(o[1], dst[1], duration, easeFn),
		tweenZ: gween.New(o[2], dst[2], duration, easeFn),
	}
}

// Update advances following and any in-flight move tween by dt seconds,
// then recomputes Direction from the new Origin and Target. Call once per
// frame before rendering.
func (c *Camera) Update(dt float32) {
	if c.followTarget != nil {
		want := geom.Vec3{
			c.followTarget[0] + c.followOffset[0],
			c.followTarget[1] + c.followOffset[1],
			c.followTarget[2] + c.followOffset[2],
		}
		o := c.Viewport.Origin
		c.Viewport.Origin = geom.Vec3{
			o[0] + (want[0]-o[0])*c.followLerp,
			o[1] + (want[1]-o[1])*c.followLerp,
			o[2] + (want[2]-o[2])*c.followLerp,
		}
	}

	if c.move != nil {
		o := c.Viewport.Origin
		if !c.move.doneX {
			v, done := c.move.tweenX.Update(dt)
			o[0] = v
			c.move.doneX = done
		}
		if !c.move.doneY {
			v, done := c.move.tweenY.Update(dt)
			o[1] = v
			c.move.doneY = done
		}
		if !c.move.doneZ {
			v, done := c.move.tweenZ.Update(dt)
			o[2] = v
			c.move.doneZ = done
		}
		c.Viewport.Origin = o
		if c.move.doneX && c.move.doneY && c.move.doneZ {
			c.move = nil
		}
	}

	c.retarget()
}

// Orbit moves the camera to a new position on the sphere of radius r
// around Target, at yaw and pitch radians (yaw around world-up, pitch
// above the horizon), and re-aims at Target. A convenience for demo
// flythrough rigs; does not itself tween, wrap in MoveTo for a smooth
// transition between orbit positions.
func (c *Camera) Orbit(yaw, pitch, r float32) {
	cy, sy := float32(math.Cos(float64(yaw))), float32(math.Sin(float64(yaw)))
	cp, sp := float32(math.Cos(float64(pitch))), float32(math.Sin(float64(pitch)))
	offset := geom.Vec3{r * cp * sy, r * sp, r * cp * cy}
	c.Viewport.Origin = geom.Vec3{
		c.Target[0] + offset[0],
		c.Target[1] + offset[1],
		c.Target[2] + offset[2],
	}
	c.retarget()
}

// retarget recomputes Viewport.Direction from Origin toward Target.
func (c *Camera) retarget() {
	d := geom.Vec3{
		c.Target[0] - c.Viewport.Origin[0],
		c.Target[1] - c.Viewport.Origin[1],
		c.Target[2] - c.Viewport.Origin[2],
	}
	if d[0] == 0 && d[1] == 0 && d[2] == 0 {
		d = geom.Vec3{0, 0, 1}
	}
	c.Viewport.Direction = d.Normalize()
}

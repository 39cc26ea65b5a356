// Package voxrt renders GPU-resident sparse voxel trees ray-traced against
// an [Ebitengine] window.
//
// voxrt owns a [Camera] and a presentation surface; the tree itself and the
// traversal loop that walks it live in internal/tree, internal/kernel, and
// internal/gpu, so the root package stays a thin host-facing shell around
// them the way [Ebitengine] expects a game loop to look.
//
// # Quick start
//
//	cam := voxrt.NewCamera(geom.Vec3{-8, 4, -8}, geom.Vec3{0, 0, 0}, math.Pi/3)
//	r := voxrt.NewRenderer(store, cfg, cam)
//	ebiten.RunGame(r)
//
// # Camera
//
// [Camera] wraps a kernel.Viewport with the controls an interactive demo
// or editor drives every frame: [Camera.Follow] and [Camera.Unfollow] track
// a moving world point, [Camera.MoveTo] tweens the origin to a destination
// using [gween], and [Camera.Orbit] repositions the camera on a sphere
// around its target for flythrough rigs.
//
// # Presentation
//
// Package internal/present turns a traced frame into pixels: it uploads the
// kernel's RGBA output to an ebiten.Image, offers a debug overlay and a
// colour-matrix grading pass as Kage shaders, and writes WebP screenshots.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package voxrt

package silhouette

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera is the view the engine projects through. Hosts backed by a real
// scene framework implement it over their own camera object.
type Camera interface {
	// WorldPosition returns the camera position in world space.
	WorldPosition() Vec3
	// Yaw returns the camera rotation around the world Y axis, in radians.
	Yaw() float64
	// Project maps a world-space point to clip space, X and Y in [-1, 1]
	// for points inside the view.
	Project(world Vec3) Vec3
	// ViewportSize returns the viewport size in screen pixels.
	ViewportSize() (w, h float64)
}

// moveAnim holds active tweens for a camera MoveTo.
type moveAnim struct {
	tweens [4]*gween.Tween // x, y, z, yaw
	done   [4]bool
}

// PerspectiveCamera is a first-person camera with yaw and pitch, the kind of
// rig an AR viewer drives from device orientation.
type PerspectiveCamera struct {
	position Vec3
	yaw      float64
	pitch    float64

	// FovY is the vertical field of view in radians.
	FovY float64
	// Near and Far bound the view frustum.
	Near, Far float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	viewProj Mat4
	dirty    bool

	move *moveAnim
}

const (
	defaultFovY = 80 * math.Pi / 180
	defaultNear = 0.005
	defaultFar  = 10000
)

// NewPerspectiveCamera creates a camera at the origin looking down -Z.
func NewPerspectiveCamera(viewport Rect) *PerspectiveCamera {
	return &PerspectiveCamera{
		FovY:     defaultFovY,
		Near:     defaultNear,
		Far:      defaultFar,
		Viewport: viewport,
		dirty:    true,
	}
}

// WorldPosition returns the camera position.
func (c *PerspectiveCamera) WorldPosition() Vec3 { return c.position }

// Yaw returns the rotation around the Y axis in radians.
func (c *PerspectiveCamera) Yaw() float64 { return c.yaw }

// Pitch returns the rotation around the camera X axis in radians.
func (c *PerspectiveCamera) Pitch() float64 { return c.pitch }

// ViewportSize returns the viewport width and height.
func (c *PerspectiveCamera) ViewportSize() (w, h float64) {
	return c.Viewport.Width, c.Viewport.Height
}

// SetPosition moves the camera.
func (c *PerspectiveCamera) SetPosition(p Vec3) {
	c.position = p
	c.dirty = true
}

// SetYaw sets the rotation around the Y axis.
func (c *PerspectiveCamera) SetYaw(yaw float64) {
	c.yaw = yaw
	c.dirty = true
}

// SetPitch sets the rotation around the camera X axis.
func (c *PerspectiveCamera) SetPitch(pitch float64) {
	c.pitch = pitch
	c.dirty = true
}

// MarkDirty forces a recomputation of the view-projection matrix. Call it
// after changing FovY, Near, Far or Viewport directly.
func (c *PerspectiveCamera) MarkDirty() {
	c.dirty = true
}

// MoveTo animates the camera to position and yaw over duration seconds.
func (c *PerspectiveCamera) MoveTo(position Vec3, yaw float64, duration float32, easeFn ease.TweenFunc) {
	c.move = &moveAnim{tweens: [4]*gween.Tween{
		gween.New(float32(c.position.X), float32(position.X), duration, easeFn),
		gween.New(float32(c.position.Y), float32(position.Y), duration, easeFn),
		gween.New(float32(c.position.Z), float32(position.Z), duration, easeFn),
		gween.New(float32(c.yaw), float32(yaw), duration, easeFn),
	}}
}

// Moving reports whether a MoveTo animation is in progress.
func (c *PerspectiveCamera) Moving() bool {
	return c.move != nil
}

// Update advances an active MoveTo by dt seconds.
func (c *PerspectiveCamera) Update(dt float32) {
	if c.move == nil {
		return
	}
	targets := [4]*float64{&c.position.X, &c.position.Y, &c.position.Z, &c.yaw}
	finished := true
	for i, tw := range c.move.tweens {
		if c.move.done[i] {
			continue
		}
		val, done := tw.Update(dt)
		*targets[i] = float64(val)
		c.move.done[i] = done
		finished = finished && done
	}
	c.dirty = true
	if finished {
		c.move = nil
	}
}

// ViewProjection returns projection * view, recomputed if dirty.
//
// The camera world matrix is Translate(position) * RotateY(yaw) * RotateX(pitch);
// the view matrix is its inverse.
func (c *PerspectiveCamera) ViewProjection() Mat4 {
	if !c.dirty {
		return c.viewProj
	}
	c.dirty = false

	view := RotationX(-c.pitch).
		Mul(RotationY(-c.yaw)).
		Mul(Translation(-c.position.X, -c.position.Y, -c.position.Z))

	aspect := 1.0
	if c.Viewport.Height > 0 {
		aspect = c.Viewport.Width / c.Viewport.Height
	}
	c.viewProj = Perspective(c.FovY, aspect, c.Near, c.Far).Mul(view)
	return c.viewProj
}

// Project maps a world point to clip space.
func (c *PerspectiveCamera) Project(world Vec3) Vec3 {
	return c.ViewProjection().TransformPoint(world)
}

// ClipToScreen maps clip-space X/Y to viewport pixels with Y growing downward.
func ClipToScreen(clip Vec3, viewportW, viewportH float64) Vec2 {
	return Vec2{
		X: (clip.X + 1) * viewportW / 2,
		Y: (1 - clip.Y) * viewportH / 2,
	}
}

package silhouette

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func newTestCamera() *PerspectiveCamera {
	return NewPerspectiveCamera(Rect{Width: 800, Height: 600})
}

func projectToScreen(c *PerspectiveCamera, p Vec3) Vec2 {
	w, h := c.ViewportSize()
	return ClipToScreen(c.Project(p), w, h)
}

func TestCameraDefaults(t *testing.T) {
	cam := newTestCamera()
	if cam.WorldPosition() != (Vec3{}) {
		t.Errorf("position = %v, want origin", cam.WorldPosition())
	}
	if cam.Yaw() != 0 || cam.Pitch() != 0 {
		t.Errorf("yaw, pitch = %v, %v, want 0, 0", cam.Yaw(), cam.Pitch())
	}
	if w, h := cam.ViewportSize(); w != 800 || h != 600 {
		t.Errorf("viewport = %vx%v, want 800x600", w, h)
	}
}

func TestCameraProjectsForwardToCenter(t *testing.T) {
	cam := newTestCamera()
	s := projectToScreen(cam, Vec3{0, 0, -5})
	if !approxEqual(s.X, 400, 1e-6) || !approxEqual(s.Y, 300, 1e-6) {
		t.Errorf("forward point = %v, want (400,300)", s)
	}
}

func TestCameraScreenAxes(t *testing.T) {
	cam := newTestCamera()
	right := projectToScreen(cam, Vec3{1, 0, -5})
	up := projectToScreen(cam, Vec3{0, 1, -5})
	if right.X <= 400 {
		t.Errorf("point right of the camera at x=%v, want > 400", right.X)
	}
	if up.Y >= 300 {
		t.Errorf("point above the camera at y=%v, want < 300 (y grows downward)", up.Y)
	}
}

func TestCameraYawTurnsLeft(t *testing.T) {
	cam := newTestCamera()
	cam.SetYaw(math.Pi / 2)
	s := projectToScreen(cam, Vec3{-5, 0, 0})
	if !approxEqual(s.X, 400, 1e-6) || !approxEqual(s.Y, 300, 1e-6) {
		t.Errorf("point on -X after a quarter turn = %v, want (400,300)", s)
	}
}

func TestCameraPitchLooksUp(t *testing.T) {
	cam := newTestCamera()
	cam.SetPitch(math.Pi / 2)
	s := projectToScreen(cam, Vec3{0, 5, 0})
	if !approxEqual(s.X, 400, 1e-6) || !approxEqual(s.Y, 300, 1e-6) {
		t.Errorf("point overhead after pitching up = %v, want (400,300)", s)
	}
}

func TestCameraTranslationMovesView(t *testing.T) {
	cam := newTestCamera()
	before := projectToScreen(cam, Vec3{0, 0, -5})
	cam.SetPosition(Vec3{X: 1})
	after := projectToScreen(cam, Vec3{0, 0, -5})
	if after.X >= before.X {
		t.Errorf("moving the camera right should move the point left: %v -> %v", before, after)
	}
}

func TestCameraMarkDirtyAfterFieldChange(t *testing.T) {
	cam := newTestCamera()
	a := projectToScreen(cam, Vec3{1, 0, -5})
	cam.FovY = cam.FovY / 2
	cam.MarkDirty()
	b := projectToScreen(cam, Vec3{1, 0, -5})
	if b.X <= a.X {
		t.Errorf("narrower fov should push the point outward: %v -> %v", a.X, b.X)
	}
}

func TestCameraMoveTo(t *testing.T) {
	cam := newTestCamera()
	cam.MoveTo(Vec3{2, 4, -6}, 1, 1, ease.Linear)
	if !cam.Moving() {
		t.Fatal("Moving() = false after MoveTo")
	}

	cam.Update(0.5)
	mid := cam.WorldPosition()
	if !approxEqual(mid.X, 1, 1e-6) || !approxEqual(mid.Y, 2, 1e-6) || !approxEqual(mid.Z, -3, 1e-6) {
		t.Errorf("halfway position = %v, want (1,2,-3)", mid)
	}
	if !approxEqual(cam.Yaw(), 0.5, 1e-6) {
		t.Errorf("halfway yaw = %v, want 0.5", cam.Yaw())
	}

	cam.Update(0.5)
	end := cam.WorldPosition()
	if !approxEqual(end.X, 2, 1e-6) || !approxEqual(end.Y, 4, 1e-6) || !approxEqual(end.Z, -6, 1e-6) {
		t.Errorf("final position = %v, want (2,4,-6)", end)
	}
	if cam.Moving() {
		t.Error("Moving() = true after the tween finished")
	}

	// Update without an animation is a no-op.
	cam.Update(1)
	if cam.WorldPosition() != end {
		t.Error("Update moved an idle camera")
	}
}

func TestClipToScreen(t *testing.T) {
	tests := []struct {
		name string
		clip Vec3
		want Vec2
	}{
		{"center", Vec3{0, 0, 0}, Vec2{400, 300}},
		{"top-left", Vec3{-1, 1, 0}, Vec2{0, 0}},
		{"bottom-right", Vec3{1, -1, 0}, Vec2{800, 600}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClipToScreen(tt.clip, 800, 600); got != tt.want {
				t.Errorf("ClipToScreen(%v) = %v, want %v", tt.clip, got, tt.want)
			}
		})
	}
}

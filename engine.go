package silhouette

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// ContourAttribute is the node attribute that stores a contour as a JSON
// array of {"x":..,"y":..} points in image pixel space.
const ContourAttribute = "data-contour"

// EngineConfig holds the engine tuning values.
type EngineConfig struct {
	// Contour configures DetectContour.
	Contour ContourConfig
	// MoveThreshold is the camera displacement, in world units, that opens
	// the update gate.
	MoveThreshold float64
	// YawThreshold is the camera yaw change, in radians, that opens the
	// update gate.
	YawThreshold float64
	// AspectRatio is the default width-to-height ratio of a node's quad.
	AspectRatio float64
	// ImageWidth and ImageHeight are the default contour pixel dimensions.
	ImageWidth, ImageHeight int
}

// A4Ratio is the aspect ratio of an A4 sheet in portrait.
const A4Ratio = 21 / 29.7

// DefaultEngineConfig returns the stock engine settings.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Contour:       DefaultContourConfig(),
		MoveThreshold: 0.001,
		YawThreshold:  0.01,
		AspectRatio:   A4Ratio,
		ImageWidth:    512,
		ImageHeight:   512,
	}
}

// cameraPose is the change-detection key of the update gate.
type cameraPose struct {
	position Vec3
	yaw      float64
	valid    bool
}

// Engine manages contour hitboxes for a scene. It is not safe for
// concurrent use; drive it from the frame loop.
type Engine struct {
	scene   SceneGraph
	cameras CameraResolver
	cfg     EngineConfig

	hitboxes []*Hitbox
	lastPose cameraPose
	sink     EventSink

	debug bool
	stats UpdateStats
}

// NewEngine creates an engine reading nodes from scene and the camera from
// cameras. A zero Contour, AspectRatio, ImageWidth or ImageHeight is taken
// from DefaultEngineConfig.
func NewEngine(scene SceneGraph, cameras CameraResolver, cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if cfg.Contour == (ContourConfig{}) {
		cfg.Contour = def.Contour
	}
	if cfg.AspectRatio <= 0 {
		cfg.AspectRatio = def.AspectRatio
	}
	if cfg.ImageWidth <= 0 {
		cfg.ImageWidth = def.ImageWidth
	}
	if cfg.ImageHeight <= 0 {
		cfg.ImageHeight = def.ImageHeight
	}
	return &Engine{scene: scene, cameras: cameras, cfg: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// SetEventSink sets the receiver of hit events. Pass nil to disable.
func (e *Engine) SetEventSink(sink EventSink) {
	e.sink = sink
}

// DetectContour runs contour detection with the engine's contour settings.
func (e *Engine) DetectContour(r *Raster) ([]Vec2, ContourSource) {
	return DetectContour(r, e.cfg.Contour)
}

// PersistContour stores points on the node's contour attribute.
func (e *Engine) PersistContour(node NodeID, points []Vec2) error {
	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("encode contour: %w", err)
	}
	if !e.scene.SetAttribute(node, ContourAttribute, string(data)) {
		return fmt.Errorf("persist contour: unknown node %d", node)
	}
	return nil
}

// LoadContour reads the node's persisted contour. ok is false when the
// attribute is missing, JSON null, or not a JSON point array.
func (e *Engine) LoadContour(node NodeID) (points []Vec2, ok bool) {
	raw, ok := e.scene.Attribute(node, ContourAttribute)
	if !ok || raw == "" {
		return nil, false
	}
	if err := json.Unmarshal([]byte(raw), &points); err != nil || points == nil {
		return nil, false
	}
	return points, true
}

// ConvertToScreen projects contour points, given in pixels of an
// imgW x imgH image, onto the screen. Each point is placed on the node's
// local quad (width ratio, height 1/ratio, centered on the origin),
// transformed by the node's world matrix, projected through the active
// camera and mapped to viewport pixels with Y growing downward.
//
// Returns nil when there is no active camera or the node is unknown.
// Non-positive dimensions or ratio fall back to the engine defaults.
func (e *Engine) ConvertToScreen(node NodeID, points []Vec2, imgW, imgH int, ratio float64) []Vec2 {
	cam, ok := e.cameras.ActiveCamera()
	if !ok {
		return nil
	}
	world, ok := e.scene.WorldMatrix(node)
	if !ok {
		return nil
	}
	if imgW <= 0 {
		imgW = e.cfg.ImageWidth
	}
	if imgH <= 0 {
		imgH = e.cfg.ImageHeight
	}
	if ratio <= 0 {
		ratio = e.cfg.AspectRatio
	}

	quadW, quadH := ratio, 1/ratio
	vw, vh := cam.ViewportSize()
	fw, fh := float64(imgW), float64(imgH)

	out := make([]Vec2, 0, len(points))
	for _, p := range points {
		local := Vec3{
			X: (p.X/fw - 0.5) * quadW,
			Y: -(p.Y/fh - 0.5) * quadH,
		}
		clip := cam.Project(world.TransformPoint(local))
		out = append(out, ClipToScreen(clip, vw, vh))
	}
	return out
}

// ShouldUpdate reports whether the camera moved or turned enough since the
// last true result for the hitboxes to need reprojection. A true result
// records the current pose. The first call with a camera always reports
// true. Without a camera it reports false.
func (e *Engine) ShouldUpdate() bool {
	cam, ok := e.cameras.ActiveCamera()
	if !ok {
		return false
	}
	pos := cam.WorldPosition()
	yaw := cam.Yaw()

	moved := !e.lastPose.valid ||
		pos.Sub(e.lastPose.position).Len() > e.cfg.MoveThreshold ||
		math.Abs(yaw-e.lastPose.yaw) > e.cfg.YawThreshold
	if moved {
		e.lastPose = cameraPose{position: pos, yaw: yaw, valid: true}
	}
	return moved
}

// Invalidate forgets the recorded camera pose so the next ShouldUpdate
// reports true. Use it after the hitbox set or node transforms change.
func (e *Engine) Invalidate() {
	e.lastPose = cameraPose{}
}

// UpdateHitboxes reprojects every hitbox from its persisted contour. A
// hitbox whose contour cannot be loaded keeps its previous screen points.
func (e *Engine) UpdateHitboxes() {
	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	stats := UpdateStats{Hitboxes: len(e.hitboxes)}
	_, hasCamera := e.cameras.ActiveCamera()
	for _, h := range e.hitboxes {
		if h == nil {
			continue
		}
		points, ok := e.LoadContour(h.Node)
		if !ok {
			stats.Skipped++
			Logger().Warn("hitbox skipped: no usable contour",
				"node", h.Node, "image", h.Image)
			continue
		}
		h.ScreenPoints = e.ConvertToScreen(h.Node, points, h.ImageWidth, h.ImageHeight, h.AspectRatio)
		if !hasCamera {
			continue
		}
		stats.Projected++
		stats.Points += len(h.ScreenPoints)
	}

	if e.debug {
		stats.Duration = time.Since(t0)
		e.debugLog(stats)
	}
	e.stats = stats
}

// Tick runs UpdateHitboxes when ShouldUpdate opens the gate and reports
// whether it did. Call it once per frame.
func (e *Engine) Tick() bool {
	if !e.ShouldUpdate() {
		return false
	}
	e.UpdateHitboxes()
	return true
}

// CreateHitbox builds a hitbox for a node that already carries a persisted
// contour. Returns nil when the node has none or it is empty. The screen
// points stay empty until the next UpdateHitboxes.
func (e *Engine) CreateHitbox(node NodeID, image string) *Hitbox {
	points, ok := e.LoadContour(node)
	if !ok || len(points) == 0 {
		return nil
	}
	return &Hitbox{
		Node:        node,
		Image:       image,
		ImageWidth:  e.cfg.ImageWidth,
		ImageHeight: e.cfg.ImageHeight,
		AspectRatio: e.cfg.AspectRatio,
	}
}

// SetHitboxes replaces the managed hitbox collection.
func (e *Engine) SetHitboxes(hitboxes []*Hitbox) {
	e.hitboxes = hitboxes
}

// Hitboxes returns the managed hitboxes. The returned slice MUST NOT be
// mutated; use SetHitboxes.
func (e *Engine) Hitboxes() []*Hitbox {
	return e.hitboxes
}

// HitTest returns the hitbox containing the screen point (x, y), or nil.
// Later hitboxes are treated as on top. A hit is forwarded to the event sink.
func (e *Engine) HitTest(x, y float64) *Hitbox {
	for i := len(e.hitboxes) - 1; i >= 0; i-- {
		h := e.hitboxes[i]
		if h == nil || !h.Contains(x, y) {
			continue
		}
		if e.sink != nil {
			e.sink.EmitHit(HitEvent{Node: h.Node, Image: h.Image, ScreenX: x, ScreenY: y})
		}
		return h
	}
	return nil
}

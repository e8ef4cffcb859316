package silhouette

// Hitbox ties a scene node to the screen-space outline of its image.
type Hitbox struct {
	// Node is the scene node the outline belongs to. The hitbox does not own it.
	Node NodeID
	// Image identifies the source image the contour was extracted from.
	Image string
	// ScreenPoints is the outline in viewport pixels for the frame of the
	// last update. Stale once the camera moves past the update threshold
	// and UpdateHitboxes has not run.
	ScreenPoints []Vec2

	// ImageWidth and ImageHeight are the pixel dimensions the contour was
	// extracted at. Zero means the engine default.
	ImageWidth, ImageHeight int
	// AspectRatio is the width-to-height ratio of the node's quad. Zero
	// means the engine default.
	AspectRatio float64
}

// Contains reports whether the screen point (x, y) lies inside the outline.
func (h *Hitbox) Contains(x, y float64) bool {
	return Polygon(h.ScreenPoints).Contains(x, y)
}

// HitEvent describes a pointer that landed on a hitbox.
type HitEvent struct {
	Node    NodeID
	Image   string
	ScreenX float64
	ScreenY float64
}

// EventSink receives hit events. Set one with Engine.SetEventSink to forward
// hits to an ECS or game logic.
type EventSink interface {
	EmitHit(event HitEvent)
}

// Package silhouette turns the visible outline of a semi-transparent image
// into a screen-space polygon for pointer hit testing against an object
// placed in an AR scene.
//
// The pipeline has two halves. Offline, or once per asset, [DetectContour]
// extracts a compact polygon from a [Raster]'s alpha channel and the result
// is persisted on the scene node under [ContourAttribute]. Every frame,
// [Engine.Tick] checks whether the camera moved past a small threshold and,
// if so, reprojects each [Hitbox] from that stored polygon into viewport
// pixels.
//
// # Quick start
//
//	scene := silhouette.NewScene()
//	cam := silhouette.NewPerspectiveCamera(silhouette.Rect{Width: 1280, Height: 720})
//	scene.SetCamera(cam)
//
//	node := scene.AddNode(0, silhouette.NewTransform(silhouette.Vec3{Z: -2}))
//	engine := silhouette.NewEngine(scene, scene, silhouette.DefaultEngineConfig())
//
//	points, _ := engine.DetectContour(silhouette.RasterFromImageScaled(img, 512, 512))
//	_ = engine.PersistContour(node, points)
//	engine.SetHitboxes([]*silhouette.Hitbox{engine.CreateHitbox(node, "paper_1.png")})
//
//	// each frame:
//	engine.Tick()
//	if h := engine.HitTest(pointerX, pointerY); h != nil {
//		// pointer is over h.Image
//	}
//
// # Collaborators
//
// The engine never owns scene nodes or cameras. It reads them through the
// [SceneGraph] and [CameraResolver] interfaces; [Scene] and
// [PerspectiveCamera] are small in-memory implementations for hosts without
// a scene framework and for tests.
//
// # Degraded results
//
// No call panics on degenerate input. [DetectContour] reports through its
// [ContourSource] whether it fell back to a bounding box or a fixed
// rectangle; hitboxes whose stored contour cannot be read are skipped and
// counted in [UpdateStats]. Install a logger with [SetLogger] to see both.
package silhouette
